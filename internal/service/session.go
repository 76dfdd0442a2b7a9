package service

import "time"

const dateFormat = "2006-01-02"

// SessionState 是单个浏览器会话的全部可变状态，由处理函数显式加载、修改、保存
type SessionState struct {
	ID              string
	SelectedDate    time.Time
	Unit            Unit
	DefaultQuantity float64
	Ledger          *Ledger
}

// NewSessionState 创建初始状态：克为单位、默认 100、游标位于早餐
func NewSessionState(id string, today time.Time) *SessionState {
	state := &SessionState{ID: id}
	state.Reset(today)
	return state
}

// SetUnit 切换单位，并同步下一次录入的默认数量
func (s *SessionState) SetUnit(unit Unit) {
	s.Unit = unit
	s.DefaultQuantity = unit.DefaultQuantity()
}

// SetDate 设置页面上的日期标签，不参与任何计算
func (s *SessionState) SetDate(date time.Time) {
	s.SelectedDate = normalizeToDate(date)
}

// DateLabel 返回 2006-01-02 格式的日期
func (s *SessionState) DateLabel() string {
	return s.SelectedDate.Format(dateFormat)
}

// AddItem 以当前单位把食物加入当前餐次
func (s *SessionState) AddItem(catalog *Catalog, food string, quantity float64) (LogEntry, error) {
	meal, ok := s.Ledger.CurrentMeal()
	if !ok {
		return LogEntry{}, ErrMealsFinished
	}
	return s.Ledger.AddEntry(catalog, meal, food, quantity, s.Unit)
}

// Reset 清空账本并恢复单位、默认数量与日期
func (s *SessionState) Reset(today time.Time) {
	if s.Ledger == nil {
		s.Ledger = NewLedger()
	} else {
		s.Ledger.Reset()
	}
	s.SetUnit(UnitGrams)
	s.SetDate(today)
}

func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
