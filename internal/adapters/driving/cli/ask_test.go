package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [document]", askCmd.Use)
}

func TestAskCmd_HasQuestionFlag(t *testing.T) {
	flag := askCmd.Flags().Lookup("question")
	require.NotNil(t, flag, "question flag should exist")
	assert.Equal(t, "q", flag.Shorthand)
}

func TestAskCmd_RequiresDocumentArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask"})

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "policy.pdf"})

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--question")
}

func TestAskCmd_AnswersInQuestionOrder(t *testing.T) {
	fake, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "policy.pdf",
		"-q", "what is the grace period?",
		"-q", "is maternity covered?",
	})

	err := rootCmd.Execute()
	require.NoError(t, err)

	assert.Equal(t, []string{"policy.pdf"}, fake.ensured)
	assert.Equal(t, []string{"abc12345"}, fake.activated)
	assert.Equal(t, []string{"what is the grace period?", "is maternity covered?"}, fake.answeredWith)

	out := buf.String()
	first := "Q: what is the grace period?\nA: answer to what is the grace period?"
	second := "Q: is maternity covered?\nA: answer to is maternity covered?"
	assert.Contains(t, out, first)
	assert.Contains(t, out, second)
	assert.Less(t, bytes.Index([]byte(out), []byte(first)), bytes.Index([]byte(out), []byte(second)))
}

func TestAskCmd_JSONOutput(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "policy.pdf", "--json", "-q", "first question"})

	err := rootCmd.Execute()
	require.NoError(t, err)

	var results []askResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "first question", results[0].Question)
	assert.Equal(t, "answer to first question", results[0].Answer)
}

func TestAskCmd_IngestFailure(t *testing.T) {
	fake, cleanup := setupTestServices()
	defer cleanup()
	fake.ensureErr = errors.New("no text could be extracted")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "blank.pdf", "-q", "anything"})

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no text could be extracted")
}

func TestAskCmd_NotConfigured(t *testing.T) {
	qaService = nil
	defer func() { rootCmd.SetArgs(nil); askQuestions = nil }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "policy.pdf", "-q", "anything"})

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, errNotConfigured)
}
