package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/intakelog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSessionNotFound 在会话不存在（例如进程重启后）时返回
var ErrSessionNotFound = errors.New("session not found")

// SessionService 负责 SessionState 的加载与保存，每次修改在单个事务内完成
type SessionService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSessionService 构造 SessionService
func NewSessionService(gdb *gorm.DB) *SessionService {
	return &SessionService{db: gdb, now: time.Now}
}

// Create 新建一个空白会话
func (s *SessionService) Create() (*SessionState, error) {
	state := NewSessionState(uuid.NewString(), s.now())
	if err := s.Save(state); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return state, nil
}

// Load 读取会话
func (s *SessionService) Load(id string) (*SessionState, error) {
	return loadSession(s.db, id)
}

// Save 整体写回会话状态
func (s *SessionService) Save(state *SessionState) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return saveSession(tx, state)
	})
}

// Update 在一个事务中加载、修改并保存会话；fn 返回错误时不写入任何变更
func (s *SessionService) Update(id string, fn func(*SessionState) error) (*SessionState, error) {
	var updated *SessionState
	err := s.db.Transaction(func(tx *gorm.DB) error {
		state, err := loadSession(tx, id)
		if err != nil {
			return err
		}
		if err := fn(state); err != nil {
			return err
		}
		if err := saveSession(tx, state); err != nil {
			return err
		}
		updated = state
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Reset 清空会话，等价于 Update(id, state.Reset)
func (s *SessionService) Reset(id string) (*SessionState, error) {
	return s.Update(id, func(state *SessionState) error {
		state.Reset(s.now())
		return nil
	})
}

func loadSession(tx *gorm.DB, id string) (*SessionState, error) {
	var record db.IntakeSession
	err := tx.Preload("Entries", func(q *gorm.DB) *gorm.DB {
		return q.Order("position ASC")
	}).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	entries := make([]LogEntry, 0, len(record.Entries))
	for _, row := range record.Entries {
		entries = append(entries, LogEntry{
			Meal:     MealSlot(row.Meal),
			Food:     row.Food,
			Quantity: row.Quantity,
			Unit:     Unit(row.Unit),
			Macros:   Macros{Kcal: row.Kcal, Protein: row.Protein, Carbs: row.Carbs, Fat: row.Fat},
		})
	}

	ledger, err := RestoreLedger(record.CurrentMealIndex, entries)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}

	unit, err := ParseUnit(record.Unit)
	if err != nil {
		unit = UnitGrams
	}

	selected, err := time.ParseInLocation(dateFormat, record.SelectedDate, time.Local)
	if err != nil {
		selected = normalizeToDate(time.Now())
	}

	return &SessionState{
		ID:              record.ID,
		SelectedDate:    selected,
		Unit:            unit,
		DefaultQuantity: record.DefaultQuantity,
		Ledger:          ledger,
	}, nil
}

func saveSession(tx *gorm.DB, state *SessionState) error {
	record := db.IntakeSession{
		ID:               state.ID,
		SelectedDate:     state.DateLabel(),
		Unit:             string(state.Unit),
		DefaultQuantity:  state.DefaultQuantity,
		CurrentMealIndex: state.Ledger.CurrentIndex(),
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_date", "unit", "default_quantity", "current_meal_index", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if err := tx.Unscoped().Where("session_id = ?", state.ID).Delete(&db.IntakeEntry{}).Error; err != nil {
		return fmt.Errorf("clear session entries: %w", err)
	}

	entries := state.Ledger.AllEntries()
	if len(entries) == 0 {
		return nil
	}

	rows := make([]db.IntakeEntry, 0, len(entries))
	for i, entry := range entries {
		rows = append(rows, db.IntakeEntry{
			SessionID: state.ID,
			Position:  i,
			Meal:      string(entry.Meal),
			Food:      entry.Food,
			Quantity:  entry.Quantity,
			Unit:      string(entry.Unit),
			Kcal:      entry.Kcal,
			Protein:   entry.Protein,
			Carbs:     entry.Carbs,
			Fat:       entry.Fat,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("save session entries: %w", err)
	}
	return nil
}
