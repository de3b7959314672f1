package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/segdecode/internal/domain"
)

const badLine = "acedgfb acedgfb gcdfa fbcad dab cefabd cdfgeb eafb cagedb ab | cdfeb fcadb cdfeb cdbaf"

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func readExample(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", "example.txt"))
	require.NoError(t, err)
	return string(b)
}

func TestCLI_Run_NoTTY_StdoutOnlyRunReportJSON(t *testing.T) {
	code, stdout, stderr := runCLI(t, readExample(t), "run")
	require.Equal(t, 0, code, "stderr=%s", stderr)

	var rr domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &rr), "stdout=%q", stdout)
	assert.Equal(t, 61229, rr.Summary.Total)
	assert.Equal(t, 10, rr.Summary.Decoded)
	assert.Equal(t, 26, rr.Summary.EasyDigits)
	assert.Contains(t, stderr, "完成：units=10")
	assert.NotContains(t, stdout, "进度:")
}

func TestCLI_Run_FileArgAndReport(t *testing.T) {
	report := filepath.Join(t.TempDir(), "out", "report.json")
	code, _, stderr := runCLI(t, "", "run", filepath.Join("testdata", "example.txt"), "--report", report, "-j", "3")
	require.Equal(t, 0, code, "stderr=%s", stderr)

	b, err := os.ReadFile(report)
	require.NoError(t, err)
	var rr domain.RunReport
	require.NoError(t, json.Unmarshal(b, &rr))
	assert.Equal(t, 61229, rr.Summary.Total)
	assert.True(t, filepath.IsAbs(rr.Input))
}

func TestCLI_Run_OnErrorExitCodes(t *testing.T) {
	input := readExample(t) + badLine + "\n"

	code, stdout, _ := runCLI(t, input, "run")
	assert.Equal(t, 1, code)
	var rr domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &rr))
	assert.Equal(t, 1, rr.Summary.Failed)
	assert.Equal(t, 61229, rr.Summary.Total)

	code, _, _ = runCLI(t, input, "run", "--on-error", "skip")
	assert.Equal(t, 0, code)
}

func TestCLI_Run_ConfigNotFound(t *testing.T) {
	code, stdout, _ := runCLI(t, "", "--config-dir", t.TempDir(), "run")
	assert.Equal(t, 1, code)

	var rr domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &rr))
	require.Len(t, rr.Items, 1)
	assert.Equal(t, domain.ErrCodeConfigNotFound, rr.Items[0].ErrorCode)
}

func TestCLI_Run_ConfigFileOnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "segdecode.toml"), []byte("on_error = \"skip\"\n"), 0o644))

	code, _, _ := runCLI(t, badLine+"\n", "--config-dir", dir, "run")
	assert.Equal(t, 0, code)

	// 显式 flag 覆盖配置文件。
	code, _, _ = runCLI(t, badLine+"\n", "--config-dir", dir, "run", "--on-error", "fail")
	assert.Equal(t, 1, code)
}

func TestCLI_UsageErrors(t *testing.T) {
	for _, args := range [][]string{
		{"run", "--nope"},
		{"run", "a", "b"},
		{"explain"},
		{"frobnicate"},
	} {
		code, _, stderr := runCLI(t, "", args...)
		assert.Equal(t, 2, code, "args=%v", args)
		assert.Contains(t, stderr, "参数错误", "args=%v", args)
	}
}

func TestCLI_Count(t *testing.T) {
	code, stdout, stderr := runCLI(t, readExample(t), "count")
	require.Equal(t, 0, code, "stderr=%s", stderr)
	assert.Equal(t, "26\n", stdout)
}

func TestCLI_Count_MalformedRecord(t *testing.T) {
	input := "ab | cd\n" + readExample(t)
	code, stdout, stderr := runCLI(t, input, "count")
	assert.Equal(t, 1, code)
	assert.Equal(t, "26\n", stdout)
	assert.Contains(t, stderr, "line 1 malformed_record")

	code, _, _ = runCLI(t, input, "count", "--on-error=skip")
	assert.Equal(t, 0, code)
}

func TestCLI_Explain(t *testing.T) {
	code, stdout, stderr := runCLI(t, "", "explain",
		"acedgfb cdfbe gcdfa fbcad dab cefabd cdfgeb eafb cagedb ab | cdfeb fcadb cdfeb cdbaf")
	require.Equal(t, 0, code, "stderr=%s", stderr)

	for _, want := range []string{"unique_length", "discriminator", "six", "=> 5 3 5 3 => 5353"} {
		assert.Contains(t, stdout, want)
	}
	// 8 的段组合是完整字母表。
	assert.Contains(t, stdout, "abcdefg")
}

func TestCLI_Explain_Failure(t *testing.T) {
	code, stdout, stderr := runCLI(t, "", "explain",
		"acedgfb cdfbe gcdfa fbcad dab cefabd cdfgeb eafb cagedb ab | cdfeb fcadb cdfeb gf")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "six", "失败前的推导步骤仍应打印")
	assert.Contains(t, stderr, domain.ErrCodeUnknownOutput)

	code, _, stderr = runCLI(t, "", "explain", "ab cd | ef")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, domain.ErrCodeMalformedRecord)
}

func TestCLI_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "", "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "segdecode version dev")
}
