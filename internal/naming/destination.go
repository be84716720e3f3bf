package naming

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/backmassage/vconv/internal/media"
)

// ConvertedSuffix is appended to the source stem.
const ConvertedSuffix = "_converted"

// maxAttempts bounds the numeric suffix search.
const maxAttempts = 10000

// ErrNoDestination is returned when every candidate name is taken.
var ErrNoDestination = errors.New("no free destination name")

// BaseDestination returns "<dir>/<stem>_converted.<format>" for source,
// where stem is the source file name without its extension.
func BaseDestination(source string, format media.Format) string {
	stem := strings.TrimSuffix(source, filepath.Ext(source))
	return stem + ConvertedSuffix + "." + string(format)
}

// candidate returns the n-th name to try: the base itself for n == 0,
// otherwise "<stem>_converted_<n>.<format>".
func candidate(base string, n int) string {
	if n == 0 {
		return base
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + strconv.Itoa(n) + ext
}

// firstFree walks the candidate sequence and returns the first name for
// which take succeeds.
func firstFree(source string, format media.Format, take func(path string) (bool, error)) (string, error) {
	base := BaseDestination(source, format)
	for n := 0; n < maxAttempts; n++ {
		p := candidate(base, n)
		ok, err := take(p)
		if err != nil {
			return "", err
		}
		if ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s: %w", base, ErrNoDestination)
}

// exists reports whether anything (file, directory, dangling symlink) is
// present at path. Unreadable entries count as present.
func exists(path string) bool {
	_, err := os.Lstat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// ChooseDestination returns the first candidate with nothing on disk. It
// creates nothing; two callers may get the same answer.
func ChooseDestination(source string, format media.Format) (string, error) {
	return firstFree(source, format, func(p string) (bool, error) {
		return !exists(p), nil
	})
}

// ReserveDestination creates an empty placeholder at the first free
// candidate using exclusive create, so a name is handed out at most once
// across goroutines and processes. The caller owns the placeholder and must
// remove it if the conversion does not produce output.
func ReserveDestination(source string, format media.Format) (string, error) {
	return firstFree(source, format, func(p string) (bool, error) {
		f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				return false, nil
			}
			return false, fmt.Errorf("reserve %s: %w", p, err)
		}
		return true, f.Close()
	})
}
