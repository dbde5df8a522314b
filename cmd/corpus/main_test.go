package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bankCSV = "序号,题目内容,选项A,选项B,选项C,选项D,正确答案\n" +
	"1,one?,a,b,c,d,A\n" +
	"2,two?,a,b,c,d,B\n" +
	"3,three?,a,b,c,d,Z\n" +
	"4,four?,a,,c,d,C\n"

func writeBank(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bank.csv")
	require.NoError(t, os.WriteFile(path, []byte(bankCSV), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		for _, name := range []string{"strict"} {
			_ = rootCmd.PersistentFlags().Set(name, "false")
		}
		_ = sampleCmd.Flags().Set("answers", "false")
		_ = sampleCmd.Flags().Set("count", "5")
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateReportsRejectedRows(t *testing.T) {
	out, err := run(t, "validate", writeBank(t))
	require.ErrorIs(t, err, errBankHasIssues)
	assert.Contains(t, out, "rejected line 5")
	assert.Contains(t, out, "flagged  line 4")
	assert.Contains(t, out, "4 rows, 3 loaded, 1 rejected, 1 flagged")
}

func TestValidateMissingFile(t *testing.T) {
	_, err := run(t, "validate", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestSamplePrintsQuestionsWithoutAnswers(t *testing.T) {
	out, err := run(t, "sample", writeBank(t), "-n", "2")
	require.NoError(t, err)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	for _, q := range got {
		assert.NotContains(t, q, "answer")
		assert.Len(t, q["options"], 4)
	}
}

func TestSampleWithAnswers(t *testing.T) {
	out, err := run(t, "sample", writeBank(t), "-n", "10", "--answers")
	require.NoError(t, err)

	var got []sampledQuestion
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	for _, q := range got {
		require.NotNil(t, q.Answer)
	}
}
