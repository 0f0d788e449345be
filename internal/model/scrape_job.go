package model

import "time"

// ScrapeJobStatus enumerates the ScrapeJob lifecycle states.
type ScrapeJobStatus string

const (
	JobPending   ScrapeJobStatus = "pending"
	JobRunning   ScrapeJobStatus = "running"
	JobCompleted ScrapeJobStatus = "completed"
	JobFailed    ScrapeJobStatus = "failed"
)

// ScrapeJob is the persistent record tracking one ingestion attempt.
// The "failed" status combined with a non-nil NextRetryAt is the queue
// predicate the Retry Drainer selects on.
type ScrapeJob struct {
	ID                 string          `gorm:"column:id;type:varchar(36);primaryKey;comment:UUID主键"`
	Organiser          string          `gorm:"column:organiser;type:varchar(64);comment:计时供应商标签"`
	EventURL           string          `gorm:"column:event_url;type:varchar(512);not null;index;comment:赛事地址"`
	Status             ScrapeJobStatus `gorm:"column:status;type:varchar(16);not null;default:pending;comment:任务状态"`
	ResultsCount       int             `gorm:"column:results_count;type:int;default:0;comment:已抓取成绩条数"`
	ErrorMessage       *string         `gorm:"column:error_message;type:varchar(100);comment:失败原因（截断至100字符）"`
	RetryCount         int             `gorm:"column:retry_count;type:int;default:0;comment:已重试次数"`
	MaxRetries         int             `gorm:"column:max_retries;type:int;default:3;comment:最大重试次数"`
	NextRetryAt        *time.Time      `gorm:"column:next_retry_at;type:timestamp;index;comment:下次重试时间"`
	NotificationSent   bool            `gorm:"column:notification_sent;type:boolean;default:false;comment:是否已发送通知"`
	CreatedAt          time.Time       `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
	CompletedAt        *time.Time      `gorm:"column:completed_at;type:timestamp;comment:完成时间"`
}

func (ScrapeJob) TableName() string { return "scrape_jobs" }

// ShortID returns the notification-payload short id (first 8 chars of the UUID).
func (j ScrapeJob) ShortID() string {
	if len(j.ID) < 8 {
		return j.ID
	}
	return j.ID[:8]
}
