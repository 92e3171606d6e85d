package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"

	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

const (
	// MoveBucket stores one entry per observed ply
	MoveBucket = "moves"

	// MetaBucket stores game-level metadata
	MetaBucket = "meta"

	// CountKey tracks the number of recorded entries
	CountKey = "count"
)

// Entry is one observed move together with the evaluation after it.
type Entry struct {
	Ply            int     `json:"ply"`
	Notation       string  `json:"notation"` // e.g. "b7e7"
	Side           string  `json:"side"`
	Capture        bool    `json:"capture"`
	Score          float64 `json:"score"`           // mover's evaluation after the move
	WinProbability float64 `json:"win_probability"` // mover's winning chances after the move
	Timestamp      int64   `json:"timestamp"`       // Unix timestamp of the observation
}

// GameLog persists the observed move sequence with BoltDB so a session
// can be reviewed after the fact.
type GameLog struct {
	db       *bbolt.DB
	dbPath   string
	count    uint64
	isClosed bool
}

// NewGameLog opens (or creates) a game log at the given path.
func NewGameLog(dbPath string) (*GameLog, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(MoveBucket)); err != nil {
			return fmt.Errorf("create move bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(MetaBucket)); err != nil {
			return fmt.Errorf("create meta bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	log := &GameLog{
		db:     db,
		dbPath: dbPath,
	}

	count, err := log.Count()
	if err != nil {
		db.Close()
		return nil, err
	}
	log.count = count

	return log, nil
}

// Append records a move and its post-move evaluation. Keys are big-endian
// ply numbers so entries iterate in game order.
func (l *GameLog) Append(m xiangqi.Move, ply int, score, winProbability float64) error {
	if l.isClosed {
		return fmt.Errorf("game log is closed")
	}

	entry := Entry{
		Ply:            ply,
		Notation:       m.String(),
		Side:           m.Piece.Side.String(),
		Capture:        m.IsCapture(),
		Score:          score,
		WinProbability: winProbability,
		Timestamp:      time.Now().Unix(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	// The counter is only committed to memory once the transaction
	// succeeds, so a rollback leaves it untouched.
	count := l.count + 1
	err = l.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(MoveBucket))
		if b == nil {
			return fmt.Errorf("move bucket not found")
		}

		keyBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(keyBytes, uint64(ply))
		if err := b.Put(keyBytes, data); err != nil {
			return err
		}

		meta := tx.Bucket([]byte(MetaBucket))
		if meta == nil {
			return fmt.Errorf("meta bucket not found")
		}

		countBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(countBytes, count)
		return meta.Put([]byte(CountKey), countBytes)
	})
	if err != nil {
		return err
	}

	l.count = count
	return nil
}

// Entries returns every recorded entry in game order.
func (l *GameLog) Entries() ([]Entry, error) {
	if l.isClosed {
		return nil, fmt.Errorf("game log is closed")
	}

	var entries []Entry
	err := l.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(MoveBucket))
		if b == nil {
			return fmt.Errorf("move bucket not found")
		}

		return b.ForEach(func(_, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("corrupt entry: %w", err)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Count returns the number of recorded entries.
func (l *GameLog) Count() (uint64, error) {
	if l.isClosed {
		return 0, fmt.Errorf("game log is closed")
	}

	var count uint64
	err := l.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket([]byte(MetaBucket))
		if meta == nil {
			return fmt.Errorf("meta bucket not found")
		}

		countBytes := meta.Get([]byte(CountKey))
		if countBytes == nil {
			count = 0
			return nil
		}

		count = binary.BigEndian.Uint64(countBytes)
		return nil
	})

	return count, err
}

// Clear removes every recorded entry, keeping the file open for a new
// game.
func (l *GameLog) Clear() error {
	if l.isClosed {
		return fmt.Errorf("game log is closed")
	}

	err := l.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(MoveBucket)); err != nil {
			return err
		}
		if _, err := tx.CreateBucket([]byte(MoveBucket)); err != nil {
			return err
		}

		meta := tx.Bucket([]byte(MetaBucket))
		if meta == nil {
			return fmt.Errorf("meta bucket not found")
		}

		countBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(countBytes, 0)
		return meta.Put([]byte(CountKey), countBytes)
	})
	if err != nil {
		return err
	}

	l.count = 0
	return nil
}

// ExportToJSON writes the full move record to a JSON file.
func (l *GameLog) ExportToJSON(outputPath string) error {
	entries, err := l.Entries()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (l *GameLog) Close() error {
	if l.isClosed {
		return nil
	}

	l.isClosed = true
	return l.db.Close()
}
