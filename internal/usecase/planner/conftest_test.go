package planner

import "context"

// textGeneratorMock implements TextGenerator for tests.
type textGeneratorMock struct {
	available bool
	response  string
	err       error

	calls      int
	lastPrompt string
	lastSystem string
}

func (m *textGeneratorMock) GenerateText(
	_ context.Context, prompt, systemPrompt string, _ int,
) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	m.lastSystem = systemPrompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *textGeneratorMock) IsAvailable() bool { return m.available }
