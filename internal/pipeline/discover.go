package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/backmassage/vconv/internal/media"
	"github.com/backmassage/vconv/internal/naming"
)

// reConverted matches stems produced by a previous run ("x_converted",
// "x_converted_3") so re-running over a directory does not convert outputs.
var reConverted = regexp.MustCompile(regexp.QuoteMeta(naming.ConvertedSuffix) + `(_\d+)?$`)

// IsConvertedOutput reports whether path looks like a file this tool wrote.
func IsConvertedOutput(path string) bool {
	base := filepath.Base(path)
	return reConverted.MatchString(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Discover expands inputs into a sorted, de-duplicated list of source files.
//
// Directories are walked recursively; hidden directories are pruned and
// files are kept by extension. Files named explicitly are sniffed by content
// and returned in rejected when they are not video. Previous outputs are
// skipped in both cases.
func Discover(inputs []string) (files, rejected []string, err error) {
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, in := range inputs {
		fi, statErr := os.Stat(in)
		if statErr != nil {
			return nil, nil, fmt.Errorf("input %s: %w", in, statErr)
		}

		if !fi.IsDir() {
			if IsConvertedOutput(in) {
				continue
			}
			ok, sniffErr := media.IsVideoFile(in)
			if sniffErr != nil {
				return nil, nil, sniffErr
			}
			if ok {
				add(in)
			} else {
				rejected = append(rejected, in)
			}
			continue
		}

		walkErr := filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != in && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if media.HasSourceExtension(path) && !IsConvertedOutput(path) {
				add(path)
			}
			return nil
		})
		if walkErr != nil {
			return nil, nil, walkErr
		}
	}

	sort.Strings(files)
	return files, rejected, nil
}
