package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default obra data directory name (relative to home).
	DefaultDataDir = ".obra"
	// DBFile is the SQLite database filename.
	DBFile = "obra.db"
	// DocumentsDir is the subdirectory used by the file store.
	DocumentsDir = "data"
	// DocumentExt is the extension of the documents written by the file store.
	DocumentExt = ".json"
	// DefaultListenAddress is the default HTTP API address.
	DefaultListenAddress = "127.0.0.1:8080"
	// UserHeader is the HTTP header carrying the acting user ID.
	UserHeader = "X-Obra-User"
)

// DBPath returns the SQLite database path inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// DocumentsPath returns the file store directory inside a data directory.
func DocumentsPath(dataDir string) string {
	return filepath.Join(dataDir, DocumentsDir)
}

// DocumentPath returns the file path of a stored document.
func DocumentPath(dir, key string) string {
	return filepath.Join(dir, key+DocumentExt)
}
