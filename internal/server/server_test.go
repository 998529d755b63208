package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/jaki95/lyrics-relay/internal/domain"
	"github.com/jaki95/lyrics-relay/internal/notification"
	"github.com/jaki95/lyrics-relay/internal/search"
	"github.com/jaki95/lyrics-relay/internal/selection"
	"github.com/jaki95/lyrics-relay/internal/service"
	"github.com/jaki95/lyrics-relay/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	bodies chan []byte
	block  chan struct{}
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{bodies: make(chan []byte, 8)}
}

func (d *recordingDispatcher) Handle(ctx context.Context, body []byte) {
	if d.block != nil {
		<-d.block
	}
	d.bodies <- body
}

func (d *recordingDispatcher) next(t *testing.T) []byte {
	t.Helper()
	select {
	case body := <-d.bodies:
		return body
	case <-time.After(time.Second):
		t.Fatal("notification was not dispatched")
		return nil
	}
}

func (d *recordingDispatcher) assertNone(t *testing.T) {
	t.Helper()
	select {
	case body := <-d.bodies:
		t.Fatalf("unexpected dispatch of %q", body)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReceiveNotification(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	server := New(dispatcher)

	for _, path := range []string{"/", "/now-playing", "/a/b/c"} {
		t.Run(path, func(t *testing.T) {
			body := "artist=Air\ntrack=Sexy Boy\nplaying=true"
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
			rr := httptest.NewRecorder()

			server.Handler().ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Empty(t, rr.Body.String())
			assert.Equal(t, body, string(dispatcher.next(t)))
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	server := New(dispatcher)

	methods := []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead}
	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/", strings.NewReader("artist=Air\ntrack=Sexy Boy\nplaying=true"))
			rr := httptest.NewRecorder()

			server.Handler().ServeHTTP(rr, req)

			assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
		})
	}
	dispatcher.assertNone(t)
}

func TestBodyReadFailure(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	server := New(dispatcher)

	req := httptest.NewRequest(http.MethodPost, "/", iotest.ErrReader(io.ErrUnexpectedEOF))
	rr := httptest.NewRecorder()

	server.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	dispatcher.assertNone(t)

	// The listener keeps serving after a failed request.
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("artist=Air"))
	rr = httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "artist=Air", string(dispatcher.next(t)))
}

func TestResponseDoesNotWaitForPipeline(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	dispatcher.block = make(chan struct{})
	server := New(dispatcher)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("artist=Air"))
	rr := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		server.Handler().ServeHTTP(rr, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("response blocked on the pipeline")
	}
	assert.Equal(t, http.StatusOK, rr.Code)

	close(dispatcher.block)
	dispatcher.next(t)
}

func TestServeAndShutdown(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	server := New(dispatcher)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/", "text/plain", strings.NewReader("artist=Air"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	dispatcher.next(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
	require.NoError(t, <-errCh)
}

func TestServeAfterShutdown(t *testing.T) {
	server := New(newRecordingDispatcher())
	require.NoError(t, server.Shutdown(context.Background()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	assert.NoError(t, server.Serve(ln))

	_, err = net.Dial("tcp", ln.Addr().String())
	assert.Error(t, err)
}

type channelOpener struct {
	opened chan string
}

func (o *channelOpener) Open(url string) { o.opened <- url }

const scenarioPage = `<html><body><table>
<tr><td><a rel="nofollow" href="https://www.uta-net.com/song/air/" class='result-link'><b>Air</b> Sexy Boy</a></td></tr>
<tr><td><a rel="nofollow" href="https://genius.com/Air-sexy-boy-lyrics" class='result-link'>Air – <b>Sexy Boy</b> Lyrics</a></td></tr>
</table></body></html>`

func TestNotificationToSelection(t *testing.T) {
	resultFile := filepath.Join(t.TempDir(), "results.txt")
	store, err := storage.NewLocalResultStore(resultFile)
	require.NoError(t, err)

	pr, pw := io.Pipe()
	out := &syncWriter{}
	opener := &channelOpener{opened: make(chan string, 1)}
	controller := selection.NewController(pr, out, store, opener)
	t.Cleanup(func() {
		pw.Close()
		controller.Close()
	})

	searched := make(chan domain.PlayerState, 1)
	searcher := &search.MockSearcher{
		SearchFunc: func(ctx context.Context, state domain.PlayerState) (string, error) {
			searched <- state
			return scenarioPage, nil
		},
	}
	relay := service.NewRelay(notification.NewParser(false), searcher, nil, controller)
	server := New(relay)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("artist=Air\ntrack=Sexy Boy\nplaying=true"))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Choose a result: ")
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, domain.PlayerState{Artist: "Air", Track: "Sexy Boy", Playing: true}, <-searched)

	data, err := os.ReadFile(resultFile)
	require.NoError(t, err)
	assert.Equal(t, "https://genius.com/Air-sexy-boy-lyrics\nhttps://www.uta-net.com/song/air/\n", string(data))

	active := controller.Active()
	require.NotNil(t, active)
	assert.Len(t, active.Results(), 2)

	_, err = fmt.Fprintln(pw, "2")
	require.NoError(t, err)

	select {
	case url := <-opener.opened:
		assert.Equal(t, "https://genius.com/Air-sexy-boy-lyrics", url)
	case <-time.After(time.Second):
		t.Fatal("no link opened")
	}
	<-active.Done()
	assert.Equal(t, selection.Terminated, active.State())
}
