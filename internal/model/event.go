package model

import (
	"time"

	"gorm.io/datatypes"
)

// Event is a single race instance on a specific date, identified by its
// organiser URL. Immutable after creation except Metadata and ScrapedAt.
type Event struct {
	ID         string         `gorm:"column:id;type:varchar(36);primaryKey;comment:UUID主键"`
	URL        string         `gorm:"column:url;type:varchar(512);uniqueIndex;not null;comment:赛事来源地址"`
	Organiser  string         `gorm:"column:organiser;type:varchar(64);not null;index;comment:计时供应商标签"`
	Name       string         `gorm:"column:name;type:varchar(256);not null;comment:赛事名称"`
	Date       time.Time      `gorm:"column:date;type:date;not null;comment:比赛日期"`
	Location   *string        `gorm:"column:location;type:varchar(256);comment:举办地点"`
	Metadata   datatypes.JSON `gorm:"column:metadata;type:jsonb;comment:自由元数据"`
	ScrapedAt  *time.Time     `gorm:"column:scraped_at;type:timestamp;comment:最近一次抓取时间"`
	CreatedAt  time.Time      `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`

	Distances []EventDistance `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}

func (Event) TableName() string { return "events" }

// RaceType enumerates the disciplines recognised by the checkpoint taxonomy.
type RaceType string

const (
	RaceTypeRunning   RaceType = "running"
	RaceTypeTriathlon RaceType = "triathlon"
	RaceTypeDuathlon  RaceType = "duathlon"
	RaceTypeUltra     RaceType = "ultra"
	RaceTypeRelay     RaceType = "relay"
)

// EventDistance is a named distance within an Event, unique by (event, name).
type EventDistance struct {
	ID                string         `gorm:"column:id;type:varchar(36);primaryKey;comment:UUID主键"`
	EventID           string         `gorm:"column:event_id;type:varchar(36);not null;uniqueIndex:uk_event_distance_name,priority:1;comment:关联赛事ID"`
	Name              string         `gorm:"column:name;type:varchar(128);not null;uniqueIndex:uk_event_distance_name,priority:2;comment:距离名称"`
	DistanceMeters    int            `gorm:"column:distance_meters;type:int;not null;comment:距离（米）"`
	RaceType          RaceType       `gorm:"column:race_type;type:varchar(16);not null;comment:赛事类型"`
	ExpectedCheckpoints datatypes.JSON `gorm:"column:expected_checkpoints;type:jsonb;comment:预期打卡点列表"`
	ParticipantCount  int            `gorm:"column:participant_count;type:int;default:0;comment:参赛人数"`
	CreatedAt         time.Time      `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

func (EventDistance) TableName() string { return "event_distances" }

// EventSourceLink asserts two Events represent the same real-world event
// (or a related/series relationship), with a confidence in [0,100].
type EventSourceLink struct {
	ID           string    `gorm:"column:id;type:varchar(36);primaryKey;comment:UUID主键"`
	EventAID     string    `gorm:"column:event_a_id;type:varchar(36);not null;uniqueIndex:uk_event_pair,priority:1;comment:赛事A"`
	EventBID     string    `gorm:"column:event_b_id;type:varchar(36);not null;uniqueIndex:uk_event_pair,priority:2;comment:赛事B"`
	Relation     string    `gorm:"column:relation;type:varchar(16);not null;comment:关系：same_event/related/series"`
	Confidence   int       `gorm:"column:confidence;type:int;not null;comment:置信度0-100"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
}

func (EventSourceLink) TableName() string { return "event_source_links" }
