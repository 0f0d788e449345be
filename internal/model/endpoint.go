package model

import "time"

// EndpointStatus enumerates the endpoint-monitor state machine's tokens.
type EndpointStatus string

const (
	EndpointUnknown EndpointStatus = "unknown"
	EndpointUp      EndpointStatus = "up"
	EndpointDown    EndpointStatus = "down"
)

// MonitoredEndpoint is a URL to probe for liveness.
type MonitoredEndpoint struct {
	ID                  string    `gorm:"column:id;type:varchar(36);primaryKey;comment:UUID主键"`
	Organiser           string    `gorm:"column:organiser;type:varchar(64);not null;comment:计时供应商标签"`
	Name                string    `gorm:"column:name;type:varchar(128);not null;comment:端点名称"`
	URL                 string    `gorm:"column:url;type:varchar(512);not null;uniqueIndex;comment:探测地址"`
	Enabled             bool      `gorm:"column:enabled;type:boolean;default:true;comment:是否启用"`
	CheckIntervalMinutes int      `gorm:"column:check_interval_minutes;type:int;default:5;comment:检测间隔（分钟）"`
	CreatedAt           time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt           time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

func (MonitoredEndpoint) TableName() string { return "monitored_endpoints" }

// EndpointStatusCurrent is the latest known status of a MonitoredEndpoint.
type EndpointStatusCurrent struct {
	EndpointID         string         `gorm:"column:endpoint_id;type:varchar(36);primaryKey;comment:关联端点ID"`
	Status             EndpointStatus `gorm:"column:status;type:varchar(8);not null;default:unknown;comment:状态token"`
	HTTPCode           int            `gorm:"column:http_code;type:int;comment:HTTP状态码"`
	ResponseTimeMs     int            `gorm:"column:response_time_ms;type:int;comment:响应耗时（毫秒）"`
	HasResults         bool           `gorm:"column:has_results;type:boolean;default:false;comment:是否探测到结果数据"`
	LastChecked        time.Time      `gorm:"column:last_checked;type:timestamp;not null;comment:最近一次检测时间"`
	LastStatusChange   time.Time      `gorm:"column:last_status_change;type:timestamp;not null;comment:最近一次状态变化时间"`
	ConsecutiveFailures int           `gorm:"column:consecutive_failures;type:int;default:0;comment:连续失败次数"`
}

func (EndpointStatusCurrent) TableName() string { return "endpoint_status_current" }

// EndpointStatusHistory is an append-only log of probes.
type EndpointStatusHistory struct {
	ID             string         `gorm:"column:id;type:varchar(36);primaryKey;comment:UUID主键"`
	EndpointID     string         `gorm:"column:endpoint_id;type:varchar(36);not null;index;comment:关联端点ID"`
	Status         EndpointStatus `gorm:"column:status;type:varchar(8);not null;comment:状态token"`
	HTTPCode       int            `gorm:"column:http_code;type:int;comment:HTTP状态码"`
	ResponseTimeMs int            `gorm:"column:response_time_ms;type:int;comment:响应耗时（毫秒）"`
	HasResults     bool           `gorm:"column:has_results;type:boolean;default:false;comment:是否探测到结果数据"`
	ErrorMessage   *string        `gorm:"column:error_message;type:varchar(256);comment:错误信息"`
	CheckedAt      time.Time      `gorm:"column:checked_at;type:timestamp;not null;comment:检测时间"`
}

func (EndpointStatusHistory) TableName() string { return "endpoint_status_history" }
