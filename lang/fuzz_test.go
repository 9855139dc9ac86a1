package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func FuzzParseString(f *testing.F) {
	for _, seed := range []string{
		sampleModule,
		"",
		"[",
		"<",
		"<loop",
		"<loop><loop></loop>",
		"// [Q1]",
		"[Q1] a <grid>b</grid> c",
		"<loop a>\n[A1] x\n<loop b>\n[B1] y\n</loop>\n</loop>",
		"ü[Ü]<grid\x80>",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, src string) {
		m, err := ParseString(context.Background(), src)
		if err != nil {
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a *ParseError: %v", err, err)
			}

			if pe.Pos.Offset < 0 || pe.Pos.Offset > len(src) {
				t.Fatalf("error offset %d out of range", pe.Pos.Offset)
			}

			return
		}

		checkTiling(t, src, m)

		for _, it := range m.Items {
			if it.Span().Len() <= 0 {
				t.Fatalf("item %v consumed no input", it)
			}
		}
	})
}

func BenchmarkParseString(b *testing.B) {
	ctx := context.Background()
	src := strings.Repeat(sampleModule, 100)

	b.SetBytes(int64(len(src)))
	b.ReportAllocs()

	for b.Loop() {
		if _, err := ParseString(ctx, src); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkScanBoundary(b *testing.B) {
	src := strings.Repeat("plain text // [Q0] comment\n", 200) + "[Q1]"

	b.SetBytes(int64(len(src)))

	for b.Loop() {
		if rem, _ := ScanBoundary(src); rem != "[Q1]" {
			b.Fatal(rem)
		}
	}
}
