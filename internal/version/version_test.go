package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInfoDefaults(t *testing.T) {
	v, c, d := Info()

	assert.Equal(t, GetVersion(), v)
	assert.Equal(t, GetCommit(), c)
	assert.Equal(t, GetDate(), d)
	assert.NotEmpty(t, v)
	assert.NotEmpty(t, c)
	assert.NotEmpty(t, d)
}

func TestStringUsesLinkerValues(t *testing.T) {
	oldVersion, oldCommit, oldDate := version, commit, date
	t.Cleanup(func() { version, commit, date = oldVersion, oldCommit, oldDate })

	version, commit, date = "1.4.0", "abc1234", "2026-03-01"

	assert.Equal(t, "version=1.4.0 commit=abc1234 date=2026-03-01", String())
	assert.Equal(t, "1.4.0", GetVersion())
}
