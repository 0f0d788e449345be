package model

import (
	"time"

	"gorm.io/datatypes"
)

// ResultStatus enumerates the finishing status of a RaceResult.
type ResultStatus string

const (
	StatusFinished ResultStatus = "finished"
	StatusDNF      ResultStatus = "dnf"
	StatusDNS      ResultStatus = "dns"
	StatusDQ       ResultStatus = "dq"
)

// RaceResult is one athlete's finish in one Event, optionally within one
// EventDistance. Name must be non-empty; if Position is set it is positive;
// ChipTime <= GunTime when both present; Status defaults to finished.
type RaceResult struct {
	ID               string         `gorm:"column:id;type:varchar(36);primaryKey;comment:UUID主键"`
	EventID          string         `gorm:"column:event_id;type:varchar(36);not null;uniqueIndex:uk_result_dedup,priority:1;comment:关联赛事ID"`
	EventDistanceID  *string        `gorm:"column:event_distance_id;type:varchar(36);index;comment:关联距离ID"`
	Position         *int           `gorm:"column:position;type:int;uniqueIndex:uk_result_dedup,priority:2;comment:总排名"`
	Bib              string         `gorm:"column:bib;type:varchar(32);uniqueIndex:uk_result_dedup,priority:3;comment:参赛号码"`
	DisplayName      string         `gorm:"column:display_name;type:varchar(256);not null;uniqueIndex:uk_result_dedup,priority:4;comment:展示姓名"`
	NormalizedName   string         `gorm:"column:normalized_name;type:varchar(256);not null;index;comment:规范化姓名"`
	Gender           string         `gorm:"column:gender;type:varchar(8);comment:性别"`
	Category         string         `gorm:"column:category;type:varchar(64);comment:组别"`
	FinishTime       string         `gorm:"column:finish_time;type:varchar(16);comment:完赛用时（字符串形式）"`
	GunTime          string         `gorm:"column:gun_time;type:varchar(16);comment:枪声计时"`
	ChipTime         string         `gorm:"column:chip_time;type:varchar(16);comment:芯片计时"`
	Pace             string         `gorm:"column:pace;type:varchar(16);comment:配速"`
	GenderPosition   *int           `gorm:"column:gender_position;type:int;comment:性别排名"`
	CategoryPosition *int           `gorm:"column:category_position;type:int;comment:组别排名"`
	Country          string         `gorm:"column:country;type:varchar(64);comment:国籍"`
	Club             string         `gorm:"column:club;type:varchar(128);comment:俱乐部"`
	Age              *int           `gorm:"column:age;type:int;comment:年龄"`
	Status           ResultStatus   `gorm:"column:status;type:varchar(8);default:finished;comment:完赛状态"`
	TimeBehind       string         `gorm:"column:time_behind;type:varchar(16);comment:落后用时"`
	AthleteID        *string        `gorm:"column:athlete_id;type:varchar(36);index;comment:关联运动员ID（弱引用，可空）"`
	ValidationPayload datatypes.JSON `gorm:"column:validation_payload;type:jsonb;comment:校验结果负载"`
	Metadata         datatypes.JSON `gorm:"column:metadata;type:jsonb;comment:自由元数据"`
	CreatedAt        time.Time      `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`

	Checkpoints []TimingCheckpoint `gorm:"foreignKey:ResultID;constraint:OnDelete:CASCADE"`
	Sources     []ResultSource     `gorm:"foreignKey:ResultID;constraint:OnDelete:CASCADE"`
}

func (RaceResult) TableName() string { return "race_results" }

// CheckpointType enumerates the three checkpoint taxonomies.
type CheckpointType string

const (
	CheckpointDistance   CheckpointType = "distance"
	CheckpointTransition CheckpointType = "transition"
	CheckpointDiscipline CheckpointType = "discipline"
)

// TimingCheckpoint is a timing point attached to a RaceResult, unique within
// the result by Name. Cumulative times are monotonically non-decreasing by
// Order.
type TimingCheckpoint struct {
	ID                 string         `gorm:"column:id;type:varchar(36);primaryKey;comment:UUID主键"`
	ResultID           string         `gorm:"column:result_id;type:varchar(36);not null;uniqueIndex:uk_result_checkpoint,priority:1;comment:关联成绩ID"`
	Type               CheckpointType `gorm:"column:type;type:varchar(16);not null;comment:打卡点类型"`
	Name               string         `gorm:"column:name;type:varchar(32);not null;uniqueIndex:uk_result_checkpoint,priority:2;comment:规范化名称"`
	Order              int            `gorm:"column:checkpoint_order;type:int;not null;comment:顺序（从1开始）"`
	SplitTime          string         `gorm:"column:split_time;type:varchar(16);comment:分段用时"`
	CumulativeTime     string         `gorm:"column:cumulative_time;type:varchar(16);comment:累计用时"`
	Pace               string         `gorm:"column:pace;type:varchar(16);comment:配速"`
	SegmentDistanceM   int            `gorm:"column:segment_distance_meters;type:int;comment:分段距离（米）"`
	CreatedAt          time.Time      `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
}

func (TimingCheckpoint) TableName() string { return "timing_checkpoints" }

// ResultSource is a provenance record per RaceResult. Exactly one source
// per result may have Primary=true at a time.
type ResultSource struct {
	ID            string         `gorm:"column:id;type:varchar(36);primaryKey;comment:UUID主键"`
	ResultID      string         `gorm:"column:result_id;type:varchar(36);not null;index;comment:关联成绩ID"`
	Organiser     string         `gorm:"column:organiser;type:varchar(64);not null;comment:来源供应商"`
	SourceURL     string         `gorm:"column:source_url;type:varchar(512);not null;comment:来源地址"`
	ScrapedAt     time.Time      `gorm:"column:scraped_at;type:timestamp;not null;comment:抓取时间"`
	FieldsProvided datatypes.JSON `gorm:"column:fields_provided;type:jsonb;comment:该来源提供的字段列表"`
	Confidence    int            `gorm:"column:confidence;type:int;default:100;comment:置信度0-100"`
	Primary       bool           `gorm:"column:is_primary;type:boolean;default:false;comment:是否主来源"`
	CreatedAt     time.Time      `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
}

func (ResultSource) TableName() string { return "result_sources" }
