package model

import "time"

// Athlete is an identity record that RaceResults may weakly link to.
type Athlete struct {
	ID             string     `gorm:"column:id;type:varchar(36);primaryKey;comment:UUID主键"`
	DisplayName    string     `gorm:"column:display_name;type:varchar(256);not null;comment:展示姓名"`
	NormalizedName string     `gorm:"column:normalized_name;type:varchar(256);not null;index;comment:规范化姓名"`
	Gender         string     `gorm:"column:gender;type:varchar(8);comment:性别"`
	BirthDate      *time.Time `gorm:"column:birth_date;type:date;comment:出生日期"`
	Country        string     `gorm:"column:country;type:varchar(64);comment:国籍"`
	ExternalUserID *string    `gorm:"column:external_user_id;type:varchar(64);comment:外部用户ID"`
	CreatedAt      time.Time  `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

func (Athlete) TableName() string { return "athletes" }

// AthleteFollow is a directed, unique, non-self relation between two
// athletes' linked user accounts.
type AthleteFollow struct {
	ID          string    `gorm:"column:id;type:varchar(36);primaryKey;comment:UUID主键"`
	FollowerID  string    `gorm:"column:follower_id;type:varchar(36);not null;uniqueIndex:uk_follow_pair,priority:1;comment:关注者"`
	FollowingID string    `gorm:"column:following_id;type:varchar(36);not null;uniqueIndex:uk_follow_pair,priority:2;comment:被关注者"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
}

func (AthleteFollow) TableName() string { return "athlete_follows" }
