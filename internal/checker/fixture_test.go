package checker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/tsz-lang/tszcore/internal/diagnostics"
	"github.com/tsz-lang/tszcore/internal/runinfo"
)

// multiModuleFixture is a txtar archive encoding an end-to-end, multi-file
// checker scenario (spec §8): one file a FileChecker accepts outright, one
// it flags, and one it flags twice, exercising CheckAll's per-file
// dispatch and result aggregation across file boundaries in one fixture
// rather than three separate single-file tests.
const multiModuleFixture = `
-- ok.tsz --
const x: number = 1;
export { x };
-- mismatch.tsz --
import { x } from "./ok";
const y: string = x;
-- double.tsz --
const a: string = 1;
const b: number = "oops";
`

func TestCheckAllTxtarMultiFileFixture(t *testing.T) {
	archive := txtar.Parse([]byte(multiModuleFixture))
	require.Len(t, archive.Files, 3, "fixture must encode exactly the three files it names")

	var files []File
	for _, f := range archive.Files {
		files = append(files, File{Path: f.Name, Content: f.Data})
	}

	p := New(func(ctx context.Context, run *runinfo.Run, f File) ([]diagnostics.DiagnosticError, error) {
		lines := strings.Split(strings.TrimRight(string(f.Content), "\n"), "\n")
		var diags []diagnostics.DiagnosticError
		for i, line := range lines {
			if strings.Contains(line, ": string = 1") || strings.Contains(line, ": number = \"oops\"") || strings.Contains(line, ": string = x") {
				diags = append(diags, errDiag(f.Path, i+1))
			}
		}
		return diags, nil
	})

	results, err := p.CheckAll(context.Background(), runinfo.New(10_000), files)
	require.NoError(t, err)
	require.Len(t, results, 3)

	byPath := map[string]Result{}
	for _, r := range results {
		byPath[r.Path] = r
	}

	assert.Empty(t, byPath["ok.tsz"].Diagnostics, "ok.tsz should report no diagnostics")
	assert.Len(t, byPath["mismatch.tsz"].Diagnostics, 1, "mismatch.tsz assigns a number to a string binding")
	assert.Len(t, byPath["double.tsz"].Diagnostics, 2, "double.tsz has two independently mistyped bindings")
}
