// Package sqlstore persists tasks in an embedded SQLite file through gorm.
//
// The store is deliberately non-strict: task ids are indexed but not unique,
// so inserting the same id twice keeps both rows, and updating or deleting an
// id that is not stored succeeds without touching anything.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/fatih/structs"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Makepad-fr/tasklist/internal/model"
)

const FileName = "todos.db"

// todoRow is the persisted shape of a task. Seq is a surrogate key; TaskID
// carries the domain id and may repeat.
type todoRow struct {
	Seq       uint      `gorm:"primaryKey;autoIncrement"`
	TaskID    uuid.UUID `gorm:"column:task_id;type:text;index;not null"`
	Title     string    `gorm:"not null"`
	Content   string    `gorm:"not null"`
	Completed bool      `gorm:"not null;default:false"`
	Date      time.Time `gorm:"index;not null"`
}

func (todoRow) TableName() string { return "todos" }

// mutableFields are the columns an update may touch.
type mutableFields struct {
	Title     string    `structs:"title"`
	Content   string    `structs:"content"`
	Completed bool      `structs:"completed"`
	Date      time.Time `structs:"date,omitnested"`
}

func rowFromTask(t model.Task) todoRow {
	return todoRow{
		TaskID:    t.ID,
		Title:     t.Title,
		Content:   t.Content,
		Completed: t.Completed,
		Date:      t.Date,
	}
}

func (r todoRow) task() model.Task {
	return model.Task{
		ID:        r.TaskID,
		Title:     r.Title,
		Content:   r.Content,
		Completed: r.Completed,
		Date:      r.Date,
	}
}

// Error wraps an engine failure with the store operation that hit it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Busy reports whether SQLite refused the operation because another
// connection or process holds the database.
func (e *Error) Busy() bool {
	var se sqlite3.Error
	if errors.As(e.Err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

type Store struct {
	db *gorm.DB
}

// Open creates (if needed) and migrates the database file at path. Engine
// diagnostics go to w; nil silences them.
func Open(path string, w logger.Writer) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}

	gl := logger.Default.LogMode(logger.Silent)
	if w != nil {
		gl = logger.New(w, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, wrap("open", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, wrap("open", err)
	}
	// one writer at a time; SQLite serialises anyway
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&todoRow{}); err != nil {
		sqlDB.Close()
		return nil, wrap("migrate", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Add(ctx context.Context, t model.Task) error {
	row := rowFromTask(t)
	return wrap("add", s.db.WithContext(ctx).Create(&row).Error)
}

// AddMany inserts every task in one transaction.
func (s *Store) AddMany(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	rows := make([]todoRow, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, rowFromTask(t))
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, 100).Error
	})
	return wrap("add many", err)
}

// All returns stored tasks in insertion order.
func (s *Store) All(ctx context.Context) ([]model.Task, error) {
	var rows []todoRow
	if err := s.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, wrap("fetch", err)
	}
	return tasksFromRows(rows), nil
}

// Update rewrites the mutable fields of the first row carrying t.ID.
func (s *Store) Update(ctx context.Context, t model.Task) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row todoRow
		err := tx.Where("task_id = ?", t.ID).Order("seq").Limit(1).Find(&row).Error
		if err != nil {
			return err
		}
		if row.Seq == 0 {
			return nil
		}
		fields := structs.Map(mutableFields{
			Title:     t.Title,
			Content:   t.Content,
			Completed: t.Completed,
			Date:      t.Date,
		})
		return tx.Model(&row).Updates(fields).Error
	})
	return wrap("update", err)
}

// Delete removes every row carrying id.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Where("task_id = ?", id).Delete(&todoRow{}).Error
	return wrap("delete", err)
}

// Search matches query against title or content, ignoring case and
// diacritics ("cafe" finds "Café"). Matching runs in Go because SQLite's
// LIKE folds neither non-ASCII case nor accents.
func (s *Store) Search(ctx context.Context, query string) ([]model.Task, error) {
	var rows []todoRow
	if err := s.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, wrap("search", err)
	}

	needle := fold(query)
	out := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(fold(r.Title), needle) || strings.Contains(fold(r.Content), needle) {
			out = append(out, r.task())
		}
	}
	return out, nil
}

func tasksFromRows(rows []todoRow) []model.Task {
	out := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.task())
	}
	return out
}

// fold lowercases s and strips combining marks.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
