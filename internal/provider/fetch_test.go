package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/segdecode/internal/domain"
)

type stubProvider struct {
	name string

	fetchErr error
	parseErr error

	body []byte
	url  string

	fetchCalls int
	parseCalls int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Fetch(ctx context.Context, ref domain.PuzzleRef, c *http.Client) ([]byte, string, error) {
	p.fetchCalls++
	if p.fetchErr != nil {
		return nil, "", p.fetchErr
	}
	return p.body, p.url, nil
}

func (p *stubProvider) Parse(ref domain.PuzzleRef, body []byte, pageURL string) ([]byte, error) {
	p.parseCalls++
	if p.parseErr != nil {
		return nil, p.parseErr
	}
	return append([]byte("parsed:"), body...), nil
}

var ref2021 = domain.PuzzleRef{Year: 2021, Day: 8}

func TestFetchParse_OK(t *testing.T) {
	p := &stubProvider{name: "puzzle", body: []byte("x"), url: "https://example.test/2021/day/8/input"}
	reg, err := NewRegistry(p)
	require.NoError(t, err)

	text, pageURL, raw, err := FetchParse(context.Background(), reg, " PUZZLE ", ref2021, nil)
	require.NoError(t, err)
	assert.Equal(t, "parsed:x", string(text))
	assert.Equal(t, "x", string(raw))
	assert.Equal(t, p.url, pageURL)
	assert.Equal(t, 1, p.fetchCalls)
	assert.Equal(t, 1, p.parseCalls)
}

func TestFetchParse_StageErrors(t *testing.T) {
	cases := []struct {
		name  string
		p     *stubProvider
		stage string
	}{
		{name: "fetch", p: &stubProvider{name: "puzzle", fetchErr: errors.New("nope")}, stage: "fetch"},
		{name: "parse", p: &stubProvider{name: "puzzle", body: []byte("x"), parseErr: errors.New("bad")}, stage: "parse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg, err := NewRegistry(tc.p)
			require.NoError(t, err)

			_, _, _, err = FetchParse(context.Background(), reg, "puzzle", ref2021, nil)
			var pe *Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tc.stage, pe.Stage)
			assert.Equal(t, "puzzle", pe.Provider)
		})
	}
}

func TestFetchParse_UnknownProviderOrRef(t *testing.T) {
	reg, err := NewRegistry(&stubProvider{name: "puzzle"})
	require.NoError(t, err)

	_, _, _, err = FetchParse(context.Background(), reg, "nope", ref2021, nil)
	assert.Error(t, err)

	_, _, _, err = FetchParse(context.Background(), reg, "puzzle", domain.PuzzleRef{Year: 2021, Day: 26}, nil)
	assert.Error(t, err)
}

func TestNewRegistry_Rejects(t *testing.T) {
	_, err := NewRegistry(nil)
	assert.Error(t, err)

	_, err = NewRegistry(&stubProvider{name: " "})
	assert.Error(t, err)

	_, err = NewRegistry(&stubProvider{name: "a"}, &stubProvider{name: "A"})
	assert.Error(t, err)

	var zero Registry
	_, ok := zero.Get("a")
	assert.False(t, ok)
}

func TestFetchURL_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			_, _ = w.Write([]byte("hello"))
			return
		}
		w.Header().Set("Location", "/login")
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	c := srv.Client()
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	b, err := FetchURL(context.Background(), c, srv.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	_, err = FetchURL(context.Background(), c, srv.URL+"/nope")
	var se *HTTPStatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusFound, se.StatusCode)
	assert.Equal(t, "/login", se.Location)
	assert.Contains(t, se.Error(), "302")

	_, err = FetchURL(context.Background(), nil, srv.URL)
	assert.Error(t, err)
}

func TestDayURL(t *testing.T) {
	assert.Equal(t, "https://adventofcode.com/2021/day/8", DayURL("", ref2021))
	assert.Equal(t, "http://x.test/2021/day/8", DayURL("http://x.test/ ", ref2021))
}
