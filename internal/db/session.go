package db

import (
	"time"

	"gorm.io/gorm"
)

// IntakeSession 保存一个浏览器会话的状态
// ID 为 uuid，与 cookie 中的会话标识一致
// SelectedDate 以 2006-01-02 文本保存，避免时区换算
// CurrentMealIndex 为餐次游标，4 表示全部结束
type IntakeSession struct {
	ID               string `gorm:"primaryKey;size:36"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	SelectedDate     string `gorm:"size:10"`
	Unit             string `gorm:"size:16"`
	DefaultQuantity  float64
	CurrentMealIndex int
	Entries          []IntakeEntry `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// IntakeEntry 是会话中的一条录入记录，Position 保留插入顺序
type IntakeEntry struct {
	gorm.Model
	SessionID string `gorm:"size:36;index:idx_intake_entry_position"`
	Position  int    `gorm:"index:idx_intake_entry_position"`
	Meal      string `gorm:"size:16"`
	Food      string
	Quantity  float64
	Unit      string `gorm:"size:16"`
	Kcal      float64
	Protein   float64
	Carbs     float64
	Fat       float64
}
