package discovery_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/duelo/internal/adapters/discovery"
	. "github.com/smartystreets/goconvey/convey"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("touch %s: %v", name, err)
		}
	}
}

func TestScan(t *testing.T) {
	Convey("Given a directory of mixed files", t, func() {
		dir := t.TempDir()
		touch(t, dir, "a.py", "b.py", "notes.txt", ".hidden.py", "ranks.db")
		So(os.Mkdir(filepath.Join(dir, "subdir.py"), 0o755), ShouldBeNil)

		Convey("When scanning with a python-only pattern", func() {
			pattern, err := discovery.ExtensionsPattern("py")
			So(err, ShouldBeNil)

			scanner := discovery.NewScanner(dir, pattern, "ranks.db")
			files, err := scanner.Scan()
			So(err, ShouldBeNil)

			Convey("Then only visible matching files are reported", func() {
				So(files, ShouldResemble, []string{"a.py", "b.py"})
			})
		})

		Convey("When scanning with no pattern restriction", func() {
			pattern, err := discovery.ExtensionsPattern("")
			So(err, ShouldBeNil)

			scanner := discovery.NewScanner(dir, pattern, "ranks.db")
			files, err := scanner.Scan()
			So(err, ShouldBeNil)

			Convey("Then everything except hidden, dirs, and the skip list shows", func() {
				So(files, ShouldResemble, []string{"a.py", "b.py", "notes.txt"})
			})
		})

		Convey("Then existence checks see files but not directories", func() {
			scanner := discovery.NewScanner(dir, nil)
			So(scanner.Exists("a.py"), ShouldBeTrue)
			So(scanner.Exists("subdir.py"), ShouldBeFalse)
			So(scanner.Exists("ghost.py"), ShouldBeFalse)
		})
	})
}

func TestExtensionsPattern(t *testing.T) {
	Convey("Given extension lists", t, func() {
		Convey("When multiple extensions are given with stray dots and spaces", func() {
			pattern, err := discovery.ExtensionsPattern(" .py, js ,ts")
			So(err, ShouldBeNil)

			Convey("Then each extension matches and others do not", func() {
				So(pattern.MatchString("main.py"), ShouldBeTrue)
				So(pattern.MatchString("app.js"), ShouldBeTrue)
				So(pattern.MatchString("app.ts"), ShouldBeTrue)
				So(pattern.MatchString("app.rb"), ShouldBeFalse)
				So(pattern.MatchString("py"), ShouldBeFalse)
			})
		})

		Convey("When the list is empty", func() {
			pattern, err := discovery.ExtensionsPattern("")
			So(err, ShouldBeNil)
			So(pattern.MatchString("anything.at.all"), ShouldBeTrue)
		})
	})
}

func TestTrash(t *testing.T) {
	Convey("Given a file to remove", t, func() {
		dir := t.TempDir()
		touch(t, dir, "loser.py")
		scanner := discovery.NewScanner(dir, nil)
		now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

		Convey("When it is trashed", func() {
			target, err := scanner.Trash("loser.py", now)
			So(err, ShouldBeNil)

			Convey("Then it moves into the trash with a timestamp suffix", func() {
				So(target, ShouldEqual, filepath.Join(dir, ".trash", "loser_20260314_150926.py"))
				So(scanner.Exists("loser.py"), ShouldBeFalse)

				_, statErr := os.Stat(target)
				So(statErr, ShouldBeNil)
			})
		})

		Convey("When the file does not exist", func() {
			_, err := scanner.Trash("ghost.py", now)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRename(t *testing.T) {
	Convey("Given files on disk", t, func() {
		dir := t.TempDir()
		touch(t, dir, "draft_one.py", "draft_two.py", "other.txt")
		scanner := discovery.NewScanner(dir, nil)

		Convey("When a single file is renamed", func() {
			So(scanner.Rename("other.txt", "notes.txt"), ShouldBeNil)
			So(scanner.Exists("notes.txt"), ShouldBeTrue)
			So(scanner.Exists("other.txt"), ShouldBeFalse)
		})

		Convey("When a wildcard pair is expanded", func() {
			pairs, err := scanner.ExpandWildcard("draft_*.py", "final_*.py")
			So(err, ShouldBeNil)

			Convey("Then each match maps to its substituted name", func() {
				So(pairs, ShouldResemble, [][2]string{
					{"draft_one.py", "final_one.py"},
					{"draft_two.py", "final_two.py"},
				})
			})
		})

		Convey("When a pattern has no star", func() {
			_, err := scanner.ExpandWildcard("draft.py", "final_*.py")
			So(err, ShouldNotBeNil)
		})

		Convey("When nothing matches the pattern", func() {
			_, err := scanner.ExpandWildcard("missing_*.py", "found_*.py")
			So(err, ShouldNotBeNil)
		})
	})
}
