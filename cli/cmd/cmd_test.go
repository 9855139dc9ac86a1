package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/qmod/fetch"
	"github.com/ardnew/qmod/lang"
)

const testModule = `Intro
[Q1] Name?
<grid id="G">
[G1] a
</grid>
<loop id="L">
[L1] where?
[L2] who?
</loop>
[Q2] bye
`

const testListing = `0        question Q1
1        grid     id="G"
2        loop     id="L"
  2.0      question L1
  2.1      question L2
3        question Q2
`

// run executes c with stdin set to in and returns what it wrote.
func run(
	t *testing.T,
	c interface{ Run(context.Context) error },
	in string,
	opts ...lang.Option,
) (string, error) {
	t.Helper()

	var out bytes.Buffer

	ctx := WithStreams(context.Background(), strings.NewReader(in), &out)
	ctx = WithParseOptions(ctx, opts...)

	err := c.Run(ctx)

	return out.String(), err
}

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestParse_Run(t *testing.T) {
	lang.ClearCache()

	got, err := run(t, &Parse{}, testModule)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got != testListing {
		t.Errorf("output:\n%s\nwant:\n%s", got, testListing)
	}
}

func TestParse_RunRemainder(t *testing.T) {
	const text = "[Q1] a\n<grid>g</grid>\nstray text\n"

	got, err := run(t, &Parse{}, text)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.HasSuffix(got, "-        unparsed stray text\n") {
		t.Errorf("output %q lacks the unparsed line", got)
	}

	_, err = run(t, &Parse{}, text, lang.WithStrict(true))
	if !errors.Is(err, ErrParseSource) || !errors.Is(err, lang.ErrTrailingText) {
		t.Errorf("strict error = %v, want %v wrapping %v", err, ErrParseSource, lang.ErrTrailingText)
	}
}

func TestParse_RunMultiple(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "[A1] first\n")
	b := writeFile(t, dir, "b.txt", "[B1] second\n")

	got, err := run(t, &Parse{Input: Input{Source: []string{a, b}}}, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "== " + a + "\n0        question A1\n\n== " + b + "\n0        question B1\n"
	if got != want {
		t.Errorf("output:\n%q\nwant:\n%q", got, want)
	}
}

func TestInput_openDeduplicates(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "m.txt", "[Q1] x\n")
	link := filepath.Join(dir, "link.txt")

	if err := os.Symlink(path, link); err != nil {
		t.Skipf("symlink: %v", err)
	}

	in := Input{Source: []string{path, "-", link, path, "-"}}

	inputs, err := in.open(WithStreams(context.Background(), strings.NewReader(""), nil))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeAll(inputs)

	var names []string
	for _, in := range inputs {
		names = append(names, in.name)
	}

	if want := []string{path, "-"}; strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("opened %v, want %v", names, want)
	}
}

func TestInput_openMissing(t *testing.T) {
	in := Input{Source: []string{filepath.Join(t.TempDir(), "missing.txt")}}

	if _, err := in.open(context.Background()); !errors.Is(err, ErrOpenSource) {
		t.Errorf("error = %v, want %v", err, ErrOpenSource)
	}
}

func TestNative_Run(t *testing.T) {
	got, err := run(t, &Native{}, testModule)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	again, err := lang.ParseModule(got)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}

	orig, _ := lang.ParseModule(testModule)

	gotQ, wantQ := slices.Collect(again.Questions()), slices.Collect(orig.Questions())
	if again.Len() != orig.Len() || len(gotQ) != len(wantQ) {
		t.Errorf("formatted module has %d items and %d questions, want %d and %d",
			again.Len(), len(gotQ), orig.Len(), len(wantQ))
	}
}

func TestJSON_Run(t *testing.T) {
	got, err := run(t, &JSON{Indent: 2}, testModule)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var doc struct {
		Preamble string           `json:"preamble"`
		Items    []map[string]any `json:"items"`
	}

	if err := json.Unmarshal([]byte(got), &doc); err != nil {
		t.Fatalf("decode %q: %v", got, err)
	}

	if len(doc.Items) != 4 || doc.Items[2]["kind"] != "loop" {
		t.Errorf("items = %v", doc.Items)
	}
}

func TestYAML_RunMultiple(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "[A1] first\n")
	b := writeFile(t, dir, "b.txt", "[B1] second\n")

	got, err := run(t, &YAML{Indent: 2, Input: Input{Source: []string{a, b}}}, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	docs := strings.Split(got, "---\n")
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2:\n%s", len(docs), got)
	}

	for i, header := range []string{"A1", "B1"} {
		var doc map[string]any
		if err := yaml.Unmarshal([]byte(docs[i]), &doc); err != nil {
			t.Fatalf("decode document %d: %v", i, err)
		}

		if !strings.Contains(docs[i], header) {
			t.Errorf("document %d lacks %s:\n%s", i, header, docs[i])
		}
	}
}

func TestTree_Run(t *testing.T) {
	got, err := run(t, &Tree{Markdown: true}, testModule)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, want := range []string{"-\n", "Q1: Name?", `<grid id="G">`, `<loop id="L">`, "L2: who?", "Q2: bye"} {
		if !strings.Contains(got, want) {
			t.Errorf("tree lacks %q:\n%s", want, got)
		}
	}

	// Nested items render deeper than their loop.
	loop := strings.Index(got, "<loop")
	l1 := strings.Index(got, "L1")
	if loop < 0 || l1 < loop {
		t.Errorf("loop child out of order:\n%s", got)
	}
}

func TestFind_Run(t *testing.T) {
	got, err := run(t, &Find{Pattern: "L", Limit: 1}, testModule)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if lines := strings.Count(got, "\n"); lines != 1 {
		t.Errorf("got %d hits, want 1:\n%s", lines, got)
	}

	if !strings.HasPrefix(got, "2.") {
		t.Errorf("hit %q is not a loop question", got)
	}
}

func TestSelect_Run(t *testing.T) {
	tests := []struct {
		name string
		cmd  Select
		want string
	}{
		{
			name: "nested",
			cmd:  Select{Expr: `depth > 0`},
			want: "2.0\tquestion\tL1\n2.1\tquestion\tL2\n",
		},
		{
			name: "groups",
			cmd:  Select{Expr: `kind != "question"`},
			want: "1\tgrid\tid=\"G\"\n2\tloop\tid=\"L\"\n",
		},
		{
			name: "count",
			cmd:  Select{Expr: `id startsWith "Q"`, Count: true},
			want: "2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, &tt.cmd, testModule)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}

			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelect_RunInvalid(t *testing.T) {
	_, err := run(t, &Select{Expr: `kind +`}, testModule)
	if !errors.Is(err, ErrQuery) || !errors.Is(err, lang.ErrInvalidQuery) {
		t.Errorf("error = %v, want %v wrapping %v", err, ErrQuery, lang.ErrInvalidQuery)
	}
}

func TestFetch_Run(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.txt":
			_, _ = w.Write([]byte("[A1] first\n"))
		case "/sub/b.txt":
			_, _ = w.Write([]byte("[B1] second\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()

	f := &Fetch{
		Names:       []string{"a.txt", "sub/b.txt"},
		Base:        srv.URL + "/",
		Concurrency: 2,
		Save:        dir,
	}

	got, err := run(t, f, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "== a.txt\n0        question A1\n\n== sub/b.txt\n0        question B1\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	data, err := os.ReadFile(filepath.Join(dir, "sub", "b.txt"))
	if err != nil || string(data) != "[B1] second\n" {
		t.Errorf("saved file = %q, %v", data, err)
	}

	f.Names = []string{"missing.txt"}
	f.Save = ""

	if _, err := run(t, f, ""); !errors.Is(err, ErrFetch) || !errors.Is(err, fetch.ErrStatus) {
		t.Errorf("error = %v, want %v wrapping %v", err, ErrFetch, fetch.ErrStatus)
	}
}

func TestBench_Run(t *testing.T) {
	got, err := run(t, &Bench{Count: 3}, testModule)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.HasPrefix(got, "-: items=4 n=3 min=") {
		t.Errorf("output = %q", got)
	}
}

func TestTiming(t *testing.T) {
	var tm timing
	for _, d := range []int{30, 10, 20} {
		tm.add(durationMS(d))
	}

	if tm.min != durationMS(10) || tm.max != durationMS(30) || tm.mean() != durationMS(20) {
		t.Errorf("timing = %s", tm)
	}

	if (timing{}).mean() != 0 {
		t.Error("empty timing has nonzero mean")
	}
}

func durationMS(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestVersion_Run(t *testing.T) {
	got, err := run(t, &Version{}, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.HasPrefix(got, "qmod ") {
		t.Errorf("output = %q", got)
	}
}

func TestInit_Run(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "qmod", "config.yaml")

			if tt.exists {
				if err := os.MkdirAll(filepath.Dir(confPath), 0o700); err != nil {
					t.Fatal(err)
				}

				writeFile(t, filepath.Dir(confPath), "config.yaml", "existing: true\n")
			}

			var cli struct {
				Strict   bool   `help:"Strict."`
				MaxDepth int    `default:"32"   help:"Depth."`
				Level    string `default:"info" help:"Level."`
				Empty    string `help:"Unset."`
			}

			parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
			if err != nil {
				t.Fatal(err)
			}

			ktx, err := parser.Parse([]string{"--strict"})
			if err != nil {
				t.Fatal(err)
			}

			err = (&Init{Force: tt.force}).Run(WithContext(context.Background(), ktx))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Run: %v", err)
			}

			data, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			want := "strict: true\nmax-depth: 32\nlevel: info\n"
			if string(data) != want {
				t.Errorf("config = %q, want %q", data, want)
			}
		})
	}
}
