package demo

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Run(&buf, slog.New(slog.NewTextHandler(io.Discard, nil))))
	out := buf.String()

	assert.Contains(t, out, `simple.SimpleMethod() = "简单实现"`)
	assert.Contains(t, out, `test.TestMethod1("x") = "测试方法1实现: x"`)
	assert.Contains(t, out, `test.TestMethod2(3, "ab") = 5`)
	assert.Contains(t, out, `multiple.TestMethod1("x") = "多重继承实现: x"`)
	assert.Contains(t, out, `multiple.TestMethod2(3, "ab") = 6`)
	assert.Contains(t, out, "another.AnotherMethod(): 另一个方法的实现")
	assert.Contains(t, out, "multiple.AnotherMethod(): 多重继承的另一个方法实现")
	assert.Contains(t, out, "rejected:")
	assert.Contains(t, out, "missing TestMethod2")
	assert.Equal(t, 1, strings.Count(out, "rejected:"))
}
