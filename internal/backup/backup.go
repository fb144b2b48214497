package backup

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// MaxBackups is the number of snapshots kept after rotation
	MaxBackups = 14
	// BackupDirName is the name of the backup directory
	BackupDirName = "backups"
	// BackupFilePrefix is the prefix for backup files
	BackupFilePrefix = "routinely-"
)

// BackupInfo describes one snapshot on disk
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager snapshots and restores the storage file. It handles both
// backends: SQLite databases are copied with VACUUM INTO, JSON files
// are copied byte for byte.
type Manager struct {
	storagePath string
	backupDir   string
}

// NewManager creates a manager for the given storage path. Backups
// live in a "backups" directory next to the storage file.
func NewManager(storagePath string) *Manager {
	return &Manager{
		storagePath: storagePath,
		backupDir:   filepath.Join(filepath.Dir(storagePath), BackupDirName),
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// suffix preserves the storage file's extension so a backup can always
// be told apart from the other backend's snapshots.
func (m *Manager) suffix() string {
	ext := filepath.Ext(m.storagePath)
	if ext == "" {
		ext = ".db"
	}
	return ext
}

func (m *Manager) isSQLite() bool {
	return m.suffix() != ".json"
}

// CreateBackup snapshots the storage file and rotates old backups.
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(false)
}

// createBackup snapshots the storage file. skipRotation prevents a
// pre-restore snapshot from evicting the backup being restored.
func (m *Manager) createBackup(skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	if _, err := os.Stat(m.storagePath); os.IsNotExist(err) {
		return "", fmt.Errorf("storage file does not exist: %s", m.storagePath)
	}

	backupPath, err := m.uniqueBackupPath()
	if err != nil {
		return "", err
	}

	if err := m.snapshot(backupPath); err != nil {
		return "", fmt.Errorf("failed to back up storage: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			// Rotation failure should not fail the backup itself
			fmt.Fprintf(os.Stderr, "Warning: failed to rotate old backups: %v\n", err)
		}
	}

	return backupPath, nil
}

// uniqueBackupPath names a snapshot after the current time, adding a
// counter when several snapshots land in the same second.
func (m *Manager) uniqueBackupPath() (string, error) {
	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(m.backupDir, BackupFilePrefix+timestamp+m.suffix())
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	}

	for counter := 1; counter <= 100; counter++ {
		path = filepath.Join(m.backupDir,
			fmt.Sprintf("%s%s-%d%s", BackupFilePrefix, timestamp, counter, m.suffix()))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique backup filename")
}

// snapshot writes a consistent copy of the storage file to destPath.
func (m *Manager) snapshot(destPath string) error {
	if !m.isSQLite() {
		return copyFile(m.storagePath, destPath)
	}

	src, err := sql.Open("sqlite", m.storagePath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer src.Close()

	var count int
	if err := src.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	// VACUUM INTO produces a clean, consistent copy even while the
	// database is open (SQLite 3.27+). Fall back to a plain copy when
	// it is unavailable.
	if _, err := src.Exec("VACUUM INTO ?", destPath); err != nil {
		src.Close()
		return copyFile(m.storagePath, destPath)
	}
	return nil
}

// ListBackups returns all snapshots, newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	if _, err := os.Stat(m.backupDir); os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, BackupFilePrefix) || !strings.HasSuffix(name, m.suffix()) {
			continue
		}

		stampStr := strings.TrimSuffix(strings.TrimPrefix(name, BackupFilePrefix), m.suffix())
		// Drop a collision counter ("-N") if present
		if parts := strings.Split(stampStr, "-"); len(parts) == 3 {
			stampStr = strings.Join(parts[:2], "-")
		}
		timestamp, err := time.Parse("20060102-150405", stampStr)
		if err != nil {
			continue
		}

		path := filepath.Join(m.backupDir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		backups = append(backups, BackupInfo{
			Path:      path,
			Timestamp: timestamp,
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// rotateBackups removes snapshots beyond the retention limit.
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}

	for i := MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// RestoreBackup replaces the storage file with a snapshot. The current
// storage file is itself snapshotted first so a bad restore can be
// undone.
func (m *Manager) RestoreBackup(backupPath string) error {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	if err := m.verifyBackup(backupPath); err != nil {
		return fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	if _, err := os.Stat(m.storagePath); err == nil {
		currentBackup, err := m.createBackup(true)
		if err != nil {
			return fmt.Errorf("failed to back up current storage before restore: %w", err)
		}
		fmt.Printf("Created backup of current storage: %s\n", filepath.Base(currentBackup))
	}

	// Copy then rename so the swap is atomic
	tempPath := m.storagePath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tempPath, m.storagePath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove temporary file %s: %v\n", tempPath, removeErr)
		}
		return fmt.Errorf("failed to restore storage: %w", err)
	}

	return nil
}

// verifyBackup checks that a snapshot is readable before it replaces
// live data.
func (m *Manager) verifyBackup(path string) error {
	if !m.isSQLite() {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !json.Valid(data) {
			return fmt.Errorf("not a valid JSON document")
		}
		return nil
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := destFile.ReadFrom(sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}
