package handlers_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kinesiogame/encuesta/internal/adapters/definition"
	"github.com/kinesiogame/encuesta/internal/adapters/journal"
	"github.com/kinesiogame/encuesta/internal/adapters/sheets"
	"github.com/kinesiogame/encuesta/internal/api/handlers"
	"github.com/kinesiogame/encuesta/internal/application/services"
	"github.com/kinesiogame/encuesta/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type surveyFixture struct {
	handler     *handlers.SurveyHandler
	journalPath string
}

func newSurveyFixture(t *testing.T, forwarder *sheets.SheetsForwarder, limiter *handlers.SubmissionRateLimiter) *surveyFixture {
	t.Helper()

	def, err := definition.Default()
	require.NoError(t, err)
	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	journalPath := filepath.Join(t.TempDir(), "data", "respuestas.jsonl")
	if forwarder == nil {
		forwarder = sheets.NewSheetsForwarder("", "Respuestas", nil)
	}
	service := services.NewSubmissionService(
		services.NewSubmissionValidator(def.ItemCount()),
		journal.NewJSONLJournal(journalPath),
		forwarder,
	)

	return &surveyFixture{
		handler:     handlers.NewSurveyHandler(service, renderer, def, limiter),
		journalPath: journalPath,
	}
}

func (f *surveyFixture) post(form url.Values, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/encuesta", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	f.handler.Submit(w, req)
	return w
}

func (f *surveyFixture) lines(t *testing.T) []string {
	t.Helper()
	file, err := os.Open(f.journalPath)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func validForm(age string) url.Values {
	form := url.Values{}
	form.Set("nombre", "Ana")
	form.Set("correo", "ana@x.com")
	form.Set("edad", age)
	for i := 1; i <= 15; i++ {
		form.Set("item_"+strconv.Itoa(i), "4")
	}
	return form
}

type journalLine struct {
	Timestamp      string `json:"timestamp"`
	DatosGenerales struct {
		Nombre string `json:"nombre"`
		Correo string `json:"correo"`
		Edad   any    `json:"edad"`
	} `json:"datos_generales"`
	Likert   map[string]string `json:"likert"`
	Abiertas map[string]string `json:"abiertas"`
}

func TestSurveyHandler_Submit_ValidFormIsJournaled(t *testing.T) {
	fixture := newSurveyFixture(t, nil, nil)

	w := fixture.post(validForm("34"), "10.0.0.1:1234")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/gracias", w.Header().Get("Location"))

	lines := fixture.lines(t)
	require.Len(t, lines, 1)

	var record journalLine
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "Ana", record.DatosGenerales.Nombre)
	assert.Equal(t, "ana@x.com", record.DatosGenerales.Correo)
	assert.Equal(t, float64(34), record.DatosGenerales.Edad)
	assert.Len(t, record.Likert, 15)
	for key, value := range record.Likert {
		assert.Equal(t, "4", value, key)
	}
	assert.Equal(t, map[string]string{"problemas": "", "ventajas": "", "otros_juegos": ""}, record.Abiertas)
	assert.True(t, strings.HasSuffix(record.Timestamp, "Z"))
}

func TestSurveyHandler_Submit_RejectionsWriteNothing(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{name: "age below range", form: validForm("9")},
		{name: "age not a number", form: validForm("abc")},
		{name: "age above range", form: validForm("111")},
		{name: "blank name", form: func() url.Values {
			f := validForm("34")
			f.Set("nombre", "   ")
			return f
		}()},
		{name: "missing email", form: func() url.Values {
			f := validForm("34")
			f.Del("correo")
			return f
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newSurveyFixture(t, nil, nil)

			w := fixture.post(tt.form, "10.0.0.1:1234")

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/encuesta", w.Header().Get("Location"))
			assert.Empty(t, fixture.lines(t))
		})
	}
}

func TestSurveyHandler_Submit_RemoteFailureIsInvisible(t *testing.T) {
	forwarder := sheets.NewSheetsForwarder("sheet-1", "Respuestas", func(ctx context.Context) (sheets.RowAppender, error) {
		return nil, errors.New("dial tcp: lookup sheets.googleapis.com: no such host")
	})
	fixture := newSurveyFixture(t, forwarder, nil)

	w := fixture.post(validForm("34"), "10.0.0.1:1234")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/gracias", w.Header().Get("Location"))
	assert.Len(t, fixture.lines(t), 1)
}

func TestSurveyHandler_Submit_JournalFailureIs500(t *testing.T) {
	def, err := definition.Default()
	require.NoError(t, err)
	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	// A directory where the journal file should be makes every append fail.
	path := t.TempDir()
	service := services.NewSubmissionService(
		services.NewSubmissionValidator(def.ItemCount()),
		journal.NewJSONLJournal(path),
	)
	handler := handlers.NewSurveyHandler(service, renderer, def, nil)

	req := httptest.NewRequest("POST", "/encuesta", strings.NewReader(validForm("34").Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
}

func TestSurveyHandler_Submit_OversizedBodyIsRejected(t *testing.T) {
	fixture := newSurveyFixture(t, nil, nil)

	form := validForm("34")
	form.Set("problemas", strings.Repeat("a", 2<<20))

	w := fixture.post(form, "10.0.0.1:1234")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/encuesta", w.Header().Get("Location"))
	assert.Empty(t, fixture.lines(t))
}

func TestSurveyHandler_Submit_ConcurrentPostsKeepEveryLine(t *testing.T) {
	fixture := newSurveyFixture(t, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			form := validForm(strconv.Itoa(20 + i))
			form.Set("ventajas", strings.Repeat("motivante ", 500))
			fixture.post(form, "10.0.0.1:1234")
		}(i)
	}
	wg.Wait()

	lines := fixture.lines(t)
	require.Len(t, lines, 25)
	for _, line := range lines {
		var record journalLine
		assert.NoError(t, json.Unmarshal([]byte(line), &record))
	}
}

func TestSurveyHandler_Submit_RateLimitedLocally(t *testing.T) {
	fixture := newSurveyFixture(t, nil, handlers.NewSubmissionRateLimiter(2, nil))

	for i := 0; i < 2; i++ {
		w := fixture.post(validForm("34"), "10.0.0.2:1234")
		assert.Equal(t, http.StatusSeeOther, w.Code)
	}

	w := fixture.post(validForm("34"), "10.0.0.2:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Len(t, fixture.lines(t), 2)

	// Another client is counted separately.
	w = fixture.post(validForm("34"), "10.0.0.3:1234")
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

type stubCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (s *stubCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, 0, s.err
	}
	if s.counts == nil {
		s.counts = make(map[string]int64)
	}
	s.counts[key]++
	return s.counts[key], window, nil
}

func TestSurveyHandler_Submit_RateLimitedInCache(t *testing.T) {
	counter := &stubCounter{}
	fixture := newSurveyFixture(t, nil, handlers.NewSubmissionRateLimiter(1, counter))

	req := func() *httptest.ResponseRecorder {
		return fixture.post(validForm("34"), "10.0.0.4:1234")
	}

	assert.Equal(t, http.StatusSeeOther, req().Code)
	w := req()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
	assert.Equal(t, int64(2), counter.counts["encuesta:submit:10.0.0.4"])
}

func TestSurveyHandler_Submit_CacheErrorFallsBackToLocal(t *testing.T) {
	counter := &stubCounter{err: errors.New("connection refused")}
	fixture := newSurveyFixture(t, nil, handlers.NewSubmissionRateLimiter(1, counter))

	assert.Equal(t, http.StatusSeeOther, fixture.post(validForm("34"), "10.0.0.5:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, fixture.post(validForm("34"), "10.0.0.5:1234").Code)
}

func TestSurveyHandler_ShowForm(t *testing.T) {
	fixture := newSurveyFixture(t, nil, nil)

	req := httptest.NewRequest("GET", "/encuesta", nil)
	w := httptest.NewRecorder()
	fixture.handler.ShowForm(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, `name="item_1"`)
	assert.Contains(t, body, `name="item_15"`)
	assert.NotContains(t, body, `name="item_16"`)
}

func TestSurveyHandler_Thanks(t *testing.T) {
	fixture := newSurveyFixture(t, nil, nil)

	req := httptest.NewRequest("GET", "/gracias", nil)
	w := httptest.NewRecorder()
	fixture.handler.Thanks(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Gracias")
}
