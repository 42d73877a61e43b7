package inference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/KeyIP-Chat/internal/chat"
)

func TestBuildPrompt_Sections(t *testing.T) {
	prompt := buildPrompt(
		"시트보수재 특허 알려줘",
		[]string{"[META]\n- 공개번호: P-1\n[/META]\n\n본문"},
		[]chat.Message{
			{Role: chat.RoleUser, Content: "이전 질문"},
			{Role: chat.RoleAssistant, Content: "이전 답변"},
		},
	)

	assert.Contains(t, prompt, "[참고 문서]")
	assert.Contains(t, prompt, "본문")
	assert.Contains(t, prompt, "[이전 대화]")
	assert.Contains(t, prompt, "사용자: 이전 질문")
	assert.Contains(t, prompt, "비서: 이전 답변")
	assert.Contains(t, prompt, "[질문]\n시트보수재 특허 알려줘")
	assert.True(t, strings.HasSuffix(prompt, "[답변]\n"))
}

func TestBuildPrompt_OmitsEmptySections(t *testing.T) {
	prompt := buildPrompt("질문", nil, nil)
	assert.NotContains(t, prompt, "[참고 문서]")
	assert.NotContains(t, prompt, "[이전 대화]")
	assert.Contains(t, prompt, "[질문]")
}

func TestBuildPrompt_SeparatesContextBlocks(t *testing.T) {
	prompt := buildPrompt("질문", []string{"첫째", "둘째"}, nil)
	assert.Equal(t, 1, strings.Count(prompt, "\n---\n"))
}
