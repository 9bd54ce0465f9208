package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"

	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

type (
	EntryType string

	UserRole string

	Category string

	// Date is a calendar date. Time-of-day, if present, is ignored for
	// filtering and matching.
	Date struct {
		time.Time
	}

	// Money is an amount in Ariary. The currency carries no minor unit,
	// so amounts are whole integers; sign lives on EntryType, never here.
	Money struct {
		Units int64
	}

	Transaction struct {
		ID          string    `json:"id"`
		OwnerID     string    `json:"ownerId"`
		Date        Date      `json:"date"`
		Amount      Money     `json:"amount"`
		Type        EntryType `json:"type"`
		Category    Category  `json:"category"`
		Description string    `json:"description"`
	}

	// FixedTemplate is a recurring income/expense pattern, not a schedule:
	// it has no due date or interval. Matching against transactions is by
	// (description, amount) equality within the viewed month.
	FixedTemplate struct {
		ID          string    `json:"id"`
		OwnerID     string    `json:"ownerId"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Type        EntryType `json:"type"`
		Category    Category  `json:"category"`
	}

	// MonthlyBudget is a spending limit for one category. Budgets are
	// shared across users in the current model.
	MonthlyBudget struct {
		Category Category `json:"category"`
		Limit    Money    `json:"limit"`
	}

	User struct {
		ID        string    `json:"id"`
		Username  string    `json:"username"`
		Password  string    `json:"password,omitempty"`
		Role      UserRole  `json:"role"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// State is the whole in-memory dataset, the unit of snapshot
	// persistence and the shape of the stored JSON document.
	State struct {
		Transactions []Transaction   `json:"transactions"`
		Templates    []FixedTemplate `json:"templates"`
		Budgets      []MonthlyBudget `json:"budgets"`
		Users        []User          `json:"users"`
	}
)

// The fixed category set of the original dataset.
const (
	CategoryHousing   Category = "Logement"
	CategoryFood      Category = "Alimentation"
	CategoryTransport Category = "Transport"
	CategoryHealth    Category = "Santé"
	CategoryLeisure   Category = "Loisirs"
	CategoryEducation Category = "Éducation"
	CategorySalary    Category = "Salaire"
	CategoryBonus     Category = "Prime"
	CategoryOther     Category = "Autre"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid entry type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyOwner       = errors.New("empty owner id")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrEmptyUsername    = errors.New("empty username")
	ErrInvalidRole      = errors.New("invalid role")
)

// Categories returns the fixed category list in display order.
func Categories() []Category {
	return []Category{
		CategoryHousing, CategoryFood, CategoryTransport, CategoryHealth,
		CategoryLeisure, CategoryEducation, CategorySalary, CategoryBonus,
		CategoryOther,
	}
}

func (c Category) Validate() error {
	for _, known := range Categories() {
		if c == known {
			return nil
		}
	}
	return ErrUnknownCategory
}

func (t EntryType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (r UserRole) Validate() error {
	switch r {
	case RoleAdmin, RoleUser:
		return nil
	default:
		return ErrInvalidRole
	}
}

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate accepts a plain date or a full RFC 3339 timestamp, keeping
// only the calendar fields.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// SameMonth reports whether the date falls in the given month and year.
func (d Date) SameMonth(month time.Month, year int) bool {
	return d.Month() == month && d.Year() == year
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Units <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Units)
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &m.Units)
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	return t.Category.Validate()
}

func (f FixedTemplate) Validate() error {
	if strings.TrimSpace(f.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if len(strings.TrimSpace(f.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(f.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := f.Amount.Validate(); err != nil {
		return err
	}
	if err := f.Type.Validate(); err != nil {
		return err
	}
	return f.Category.Validate()
}

func (b MonthlyBudget) Validate() error {
	if err := b.Category.Validate(); err != nil {
		return err
	}
	return b.Limit.Validate()
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	return u.Role.Validate()
}

// Sanitized returns a copy safe for responses and exports.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// Clone returns a deep copy of the state so callers can hand out
// snapshots without aliasing the store's collections.
func (s State) Clone() State {
	out := State{}
	if s.Transactions != nil {
		out.Transactions = append([]Transaction(nil), s.Transactions...)
	}
	if s.Templates != nil {
		out.Templates = append([]FixedTemplate(nil), s.Templates...)
	}
	if s.Budgets != nil {
		out.Budgets = append([]MonthlyBudget(nil), s.Budgets...)
	}
	if s.Users != nil {
		out.Users = append([]User(nil), s.Users...)
	}
	return out
}
