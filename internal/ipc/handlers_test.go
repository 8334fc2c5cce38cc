package ipc_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matjam/camview/internal/ipc"
	"github.com/matjam/camview/internal/types"
)

type fakeManager struct {
	mu   sync.Mutex
	cmds []ipc.Command
}

func (m *fakeManager) Status() ipc.PreviewStatus {
	return ipc.PreviewStatus{
		Source:  "pattern",
		Display: "headless",
		Surface: types.Size{Width: 640, Height: 480},
	}
}

func (m *fakeManager) EnqueueCommand(cmd ipc.Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cmds = append(m.cmds, cmd)
}

func (m *fakeManager) commands() []ipc.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ipc.Command(nil), m.cmds...)
}

func serve(t *testing.T, m ipc.ManagerInterface, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := ipc.NewServer(m)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestStatusHandler(t *testing.T) {
	assert := assert.New(t)
	rec := serve(t, &fakeManager{}, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var st ipc.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal("ok", st.Status)
	assert.Equal("pattern", st.Preview.Source)
	assert.Equal(types.Size{Width: 640, Height: 480}, st.Preview.Surface)
	assert.NotZero(st.PID)
	assert.True(strings.HasSuffix(st.Socket, "camview.sock"))
}

func TestCommandHandlers(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		want ipc.Command
	}{
		{"stop", "/stop", "", ipc.Command{Type: ipc.CommandStop}},
		{"next", "/next", "", ipc.Command{Type: ipc.CommandNext}},
		{"rotate", "/rotate", `{"degrees":90}`, ipc.Command{Type: ipc.CommandRotate, Args: []string{"90"}}},
		{"source", "/source", `{"source":"~/Pictures"}`, ipc.Command{Type: ipc.CommandSource, Args: []string{"~/Pictures"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeManager{}
			rec := serve(t, m, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, []ipc.Command{tt.want}, m.commands())
		})
	}
}

func TestCommandHandlers_BadRequest(t *testing.T) {
	m := &fakeManager{}

	rec := serve(t, m, http.MethodPost, "/rotate", `{"degrees":"left"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, m, http.MethodPost, "/source", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, m.commands())
}

func TestUnknownRoute(t *testing.T) {
	rec := serve(t, &fakeManager{}, http.MethodPost, "/load", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSocketPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/camview.sock", ipc.SocketPath())
}

func TestParseDegrees(t *testing.T) {
	assert := assert.New(t)

	d, err := ipc.ParseDegrees("90")
	require.NoError(t, err)
	assert.Equal(90, d)

	d, err = ipc.ParseDegrees("-270deg")
	require.NoError(t, err)
	assert.Equal(-270, d)

	_, err = ipc.ParseDegrees("left")
	assert.Error(err)
}
