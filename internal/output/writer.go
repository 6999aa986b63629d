// Package output writes rendered artifacts to their destination.
package output

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/temirov/fcom/internal/utils"
)

const (
	// LockFileSuffix is appended to the destination path to name its lock file.
	LockFileSuffix = ".lock"

	temporaryFilePattern = ".fcom-*"
	outputFileMode       = 0o644
	outputDirectoryMode  = 0o755

	errorCreateDirectoryFormat = "create output directory %s: %w"
	errorAcquireLockFormat     = "acquire lock on %s: %w"
	errorReleaseLockFormat     = "release lock on %s: %w"
	errorCreateTemporaryFormat = "create temporary file in %s: %w"
	errorWriteTemporaryFormat  = "write temporary file %s: %w"
	errorSyncTemporaryFormat   = "sync temporary file %s: %w"
	errorCloseTemporaryFormat  = "close temporary file %s: %w"
	errorChmodTemporaryFormat  = "set permissions on %s: %w"
	errorRenameFormat          = "replace %s: %w"
	errorWriteStdoutFormat     = "write to standard output: %w"
)

// Write stores data at destinationPath, or writes it to standardOutput when the
// path is utils.StdoutOutputPath. File writes hold an exclusive lock on the
// sibling lock file and replace the destination atomically, so readers never
// observe a partial artifact. The lock file is removed afterwards.
func Write(destinationPath string, data []byte, standardOutput io.Writer) error {
	if destinationPath == utils.StdoutOutputPath {
		if _, writeError := standardOutput.Write(data); writeError != nil {
			return fmt.Errorf(errorWriteStdoutFormat, writeError)
		}
		return nil
	}

	destinationDirectory := filepath.Dir(destinationPath)
	if mkdirError := os.MkdirAll(destinationDirectory, outputDirectoryMode); mkdirError != nil {
		return fmt.Errorf(errorCreateDirectoryFormat, destinationDirectory, mkdirError)
	}

	lockPath := destinationPath + LockFileSuffix
	fileLock := flock.New(lockPath)
	if lockError := fileLock.Lock(); lockError != nil {
		return fmt.Errorf(errorAcquireLockFormat, destinationPath, lockError)
	}
	writeError := atomicWrite(destinationPath, data)
	unlockError := fileLock.Unlock()
	if removeError := os.Remove(lockPath); removeError != nil && !errors.Is(removeError, fs.ErrNotExist) && writeError == nil && unlockError == nil {
		unlockError = removeError
	}
	if writeError != nil {
		return writeError
	}
	if unlockError != nil {
		return fmt.Errorf(errorReleaseLockFormat, destinationPath, unlockError)
	}
	return nil
}

// atomicWrite writes into a temporary sibling and renames it over destinationPath.
func atomicWrite(destinationPath string, data []byte) error {
	destinationDirectory := filepath.Dir(destinationPath)
	temporaryFile, createError := os.CreateTemp(destinationDirectory, temporaryFilePattern)
	if createError != nil {
		return fmt.Errorf(errorCreateTemporaryFormat, destinationDirectory, createError)
	}
	temporaryPath := temporaryFile.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = temporaryFile.Close()
			_ = os.Remove(temporaryPath)
		}
	}()

	if _, writeError := temporaryFile.Write(data); writeError != nil {
		return fmt.Errorf(errorWriteTemporaryFormat, temporaryPath, writeError)
	}
	if syncError := temporaryFile.Sync(); syncError != nil {
		return fmt.Errorf(errorSyncTemporaryFormat, temporaryPath, syncError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		return fmt.Errorf(errorCloseTemporaryFormat, temporaryPath, closeError)
	}
	if chmodError := os.Chmod(temporaryPath, outputFileMode); chmodError != nil {
		return fmt.Errorf(errorChmodTemporaryFormat, temporaryPath, chmodError)
	}
	if renameError := os.Rename(temporaryPath, destinationPath); renameError != nil {
		return fmt.Errorf(errorRenameFormat, destinationPath, renameError)
	}
	renamed = true
	return nil
}
