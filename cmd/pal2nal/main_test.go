package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/backmassage/pal2nal/internal/config"
	"github.com/backmassage/pal2nal/internal/logging"
	"github.com/backmassage/pal2nal/internal/reconstruct"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// execute runs the command tree with args and returns stdout and the exit
// status.
func execute(t *testing.T, args ...string) (string, int) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--no-color"))
	code := exitStatus(root.ExecuteContext(context.Background()), io.Discard)
	return out.String(), code
}

func newBatch(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "mafft", "geneA.aa.fa"), ">t1\nMK\n>t2\nM-\n")
	writeFile(t, filepath.Join(root, "nt", "geneA.nt.fa"), ">t2\nATG\n>t1\nATGAAA\n")
	writeFile(t, filepath.Join(root, "mafft", "geneB.aa.fa"), ">t3\nM\n")
	writeFile(t, filepath.Join(root, "nt", "geneB.nt.fa"), ">t1\nATG\n")
	return root
}

func TestExitStatus(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, 0, exitStatus(nil, &stderr))
	assert.Equal(t, 130, exitStatus(exitCode(130), &stderr))
	assert.Empty(t, stderr.String())
	assert.Equal(t, 1, exitStatus(errors.New("boom"), &stderr))
	assert.Equal(t, "pal2nal: boom\n", stderr.String())
}

func TestBatch_ConvertsAndIsolatesFailures(t *testing.T) {
	root := newBatch(t)
	report := filepath.Join(t.TempDir(), "run.json")

	_, code := execute(t, "-i", root, "-p", "2", "--report", report)

	assert.Equal(t, 1, code)
	got, err := os.ReadFile(filepath.Join(root, "nt_aligned", "geneA.nt.fa"))
	require.NoError(t, err)
	assert.Equal(t, ">t1\nATGAAA\n>t2\nATG---\n", string(got))
	assert.NoFileExists(t, filepath.Join(root, "nt_aligned", "geneB.nt.fa"))

	b, err := os.ReadFile(report)
	require.NoError(t, err)
	var r struct {
		RunID   string `json:"run_id"`
		Written int    `json:"written"`
		Failed  int    `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(b, &r))
	assert.NotEmpty(t, r.RunID)
	assert.Equal(t, 1, r.Written)
	assert.Equal(t, 1, r.Failed)
}

func TestBatch_UnknownTableAbortsBeforeWork(t *testing.T) {
	root := newBatch(t)

	_, code := execute(t, "-i", root, "-t", "7")

	assert.Equal(t, 1, code)
	assert.NoDirExists(t, filepath.Join(root, "nt_aligned"))
}

func TestBatch_MissingInput(t *testing.T) {
	_, code := execute(t, "-i", filepath.Join(t.TempDir(), "absent"))
	assert.Equal(t, 1, code)
}

func TestBatch_InvalidConfig(t *testing.T) {
	root := newBatch(t)
	_, code := execute(t, "-i", root, "--merge-into", "all.fa")
	assert.Equal(t, 1, code, "merge-into without append is rejected")
}

func TestBatch_DryRun(t *testing.T) {
	root := newBatch(t)
	_, code := execute(t, "-i", root, "-d")
	assert.Equal(t, 1, code)
	assert.NoDirExists(t, filepath.Join(root, "nt_aligned"))
}

func TestPair_Stdout(t *testing.T) {
	root := newBatch(t)
	out, code := execute(t, "pair",
		"--aa", filepath.Join(root, "mafft", "geneA.aa.fa"),
		"--nt", filepath.Join(root, "nt", "geneA.nt.fa"))

	assert.Equal(t, 0, code)
	assert.Equal(t, ">t1\nATGAAA\n>t2\nATG---\n", out)
}

func TestPair_File(t *testing.T) {
	root := newBatch(t)
	dest := filepath.Join(t.TempDir(), "out.fa")
	_, code := execute(t, "pair",
		"--aa", filepath.Join(root, "mafft", "geneA.aa.fa"),
		"--nt", filepath.Join(root, "nt", "geneA.nt.fa"),
		"--out", dest)

	assert.Equal(t, 0, code)
	assert.FileExists(t, dest)
}

func TestPair_CorrespondenceError(t *testing.T) {
	root := newBatch(t)
	dest := filepath.Join(t.TempDir(), "out.fa")
	_, code := execute(t, "pair",
		"--aa", filepath.Join(root, "mafft", "geneB.aa.fa"),
		"--nt", filepath.Join(root, "nt", "geneB.nt.fa"),
		"--out", dest)

	assert.Equal(t, 1, code)
	assert.NoFileExists(t, dest)
}

func TestTables_List(t *testing.T) {
	out, code := execute(t, "tables")
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines[0], "tables from embedded")
	assert.Equal(t, "1", lines[1])
	assert.Contains(t, lines, "11")
}

func TestTables_JSON(t *testing.T) {
	out, code := execute(t, "tables", "--format", "json")
	require.Equal(t, 0, code)
	var all map[string]map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	assert.Contains(t, all, "1")
	assert.Contains(t, all["2"]["W"], "TGA")
}

func TestTables_YAML(t *testing.T) {
	out, code := execute(t, "tables", "11", "--format", "yaml")
	require.Equal(t, 0, code)
	var tbl map[string][]string
	require.NoError(t, yaml.Unmarshal([]byte(out), &tbl))
	assert.ElementsMatch(t, []string{"TAA", "TAG", "TGA"}, tbl["*"])
	assert.Len(t, tbl["X"], 64)
}

func TestTables_UnknownID(t *testing.T) {
	_, code := execute(t, "tables", "7")
	assert.Equal(t, 1, code)
}

func TestAnalyze(t *testing.T) {
	root := newBatch(t)
	out, code := execute(t, "analyze", "-i", root)

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "geneA")
	assert.Contains(t, out, `"t3"`)
	assert.NoDirExists(t, filepath.Join(root, "nt_aligned"))
}

func TestCheck(t *testing.T) {
	root := newBatch(t)
	_, code := execute(t, "check", "-i", root)
	assert.Equal(t, 0, code)
}

func TestNewReconstructor_VerboseStreamsCommandStderr(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Reconstructor = config.ReconstructorCommand
	cfg.Command = "pal2nal.pl {aa} {nt}"

	rec, err := newReconstructor(&cfg, logging.New(io.Discard, io.Discard, false, true))
	require.NoError(t, err)
	c, ok := rec.(*reconstruct.Command)
	require.True(t, ok)
	assert.Equal(t, os.Stderr, c.Stderr)

	rec, err = newReconstructor(&cfg, logging.New(io.Discard, io.Discard, false, false))
	require.NoError(t, err)
	assert.Nil(t, rec.(*reconstruct.Command).Stderr)
}

func TestVersion(t *testing.T) {
	out, code := execute(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "pal2nal version "+version+" ("+commit+")\n", out)
}
