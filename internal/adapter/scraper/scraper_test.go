package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harvest/config"
	"harvest/internal/adapter/cache"
	"harvest/internal/adapter/fetch"
	"harvest/internal/domain"
)

const directoryHTML = `<html><body><div id="template-page-content">
<h1>Faculty</h1>
<ul><li><a href="mailto:dean@example.edu">email</a><a href="/clas/dean">Dean</a></li></ul>
<ul><li><a href="mailto:assoc@example.edu">email</a><a href="/clas/assoc">Associate Dean</a></li></ul>
<ul>
<li><a href="mailto:jdoe@example.edu">email</a><a href="/clas/faculty/jdoe">Jane Doe</a></li>
<li><a href="mailto:bsmith@example.edu">email</a><a href="/clas/faculty/bsmith">Bob Smith</a></li>
</ul>
<ul>
<li><a href="mailto:cwu@example.edu">email</a><a href="faculty/cwu">Chen Wu</a></li>
</ul>
</div></body></html>`

const jdoeHTML = `<html><body><div id="template-page-content"><div>
<div><div class="contact"><h2>Jane Q. Doe, Ph.D.</h2></div><div>Professor<br>Department of History and Political Science<br>Azusa</div></div>
<div><ul><li>Ph.D. in History, University of California, Los Angeles, 2005</li><li>M.A., Biola University, 1999</li></ul></div>
</div></div></body></html>`

const bsmithHTML = `<html><body><div id="template-page-content"><div>
<div><div class="contact"><h2>Robert 'Bob' Smith, Ed.D., M.A.</h2></div><div>Associate Professor</div></div>
<div><ul><li>B.A., Westmont College, 1990</li><li>Ph.D. - Theology - Fuller Theological Seminary, Pasadena, 2001</li></ul>
<div class="sdepartment"><ul><li>Theology and Ethics</li></ul></div></div>
</div></div></body></html>`

const cwuHTML = `<html><body><div id="template-page-content"><div>
<div><div class="contact"><h2>Chen Wu, MFA</h2></div><div>Lecturer</div></div>
<div><p>Bio only.</p></div>
</div></div></body></html>`

const lnguyenHTML = `<html><body><div id="template-page-content"><div>
<div><div class="contact"><h2>Lan Nguyen, Ph.D.</h2></div><div>Professor</div></div>
<div><ul><li><strong>Ph.D., Stanford University</strong></li></ul></div>
</div></div></body></html>`

const noTitleHTML = `<html><body><div id="template-page-content"><p>Moved.</p></div></body></html>`

func newFixtureServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/clas/faculty":         directoryHTML,
		"/clas/faculty/jdoe":    jdoeHTML,
		"/clas/faculty/bsmith":  bsmithHTML,
		"/clas/faculty/cwu":     cwuHTML,
		"/clas/faculty/lnguyen": lnguyenHTML,
		"/clas/faculty/empty":   noTitleHTML,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestScraper(t *testing.T, srv *httptest.Server) *Scraper {
	t.Helper()
	site := config.DefaultAPUSite()
	site.RootURL = srv.URL
	s, err := New(fetch.NewClient(5*time.Second, "harvest-test"), cache.NewPageCache(10, time.Minute), site)
	require.NoError(t, err)
	return s
}

func TestScraper_ProfileLinks(t *testing.T) {
	srv := newFixtureServer(t, nil)
	s := newTestScraper(t, srv)

	links, err := s.ProfileLinks(context.Background())
	require.NoError(t, err)

	want := []string{
		srv.URL + "/clas/faculty/jdoe",
		srv.URL + "/clas/faculty/bsmith",
		srv.URL + "/clas/faculty/cwu",
	}
	if diff := cmp.Diff(want, links); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestScraper_Profile(t *testing.T) {
	srv := newFixtureServer(t, nil)
	s := newTestScraper(t, srv)

	tests := []struct {
		path string
		want domain.Faculty
	}{
		{
			path: "/clas/faculty/jdoe",
			want: domain.Faculty{
				FirstName:  "Jane",
				LastName:   "Doe",
				University: "Azusa Pacific University",
				Department: "History and Political Science",
				GradSchool: "University of California, Los Angeles",
				GradDegree: "Ph.D.",
			},
		},
		{
			path: "/clas/faculty/bsmith",
			want: domain.Faculty{
				FirstName:  "Robert",
				LastName:   "Smith",
				University: "Azusa Pacific University",
				Department: "Theology and Ethics",
				GradSchool: "Fuller Theological Seminary, Pasadena",
				GradDegree: "Ph.D.",
			},
		},
		{
			path: "/clas/faculty/cwu",
			want: domain.Faculty{
				FirstName:  "Chen",
				LastName:   "Wu",
				University: "Azusa Pacific University",
				GradDegree: "MFA",
			},
		},
		{
			// Education text nested in markup has no text of its own
			path: "/clas/faculty/lnguyen",
			want: domain.Faculty{
				FirstName:  "Lan",
				LastName:   "Nguyen",
				University: "Azusa Pacific University",
				GradDegree: "Ph.D.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := s.Profile(context.Background(), srv.URL+tt.path)
			require.NoError(t, err)

			tt.want.ProfileURL = srv.URL + tt.path
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("faculty mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScraper_ProfileErrors(t *testing.T) {
	srv := newFixtureServer(t, nil)
	s := newTestScraper(t, srv)

	_, err := s.Profile(context.Background(), srv.URL+"/clas/faculty/empty")
	assert.True(t, errors.Is(err, domain.ErrSelectorNoMatch), "got %v", err)

	_, err = s.Profile(context.Background(), srv.URL+"/clas/faculty/missing")
	assert.True(t, errors.Is(err, domain.ErrDocumentNotFound), "got %v", err)
}

func TestScraper_PageCache(t *testing.T) {
	var hits int32
	srv := newFixtureServer(t, &hits)
	s := newTestScraper(t, srv)

	for i := 0; i < 3; i++ {
		_, err := s.Profile(context.Background(), srv.URL+"/clas/faculty/jdoe")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestScraper_DirectoryURL(t *testing.T) {
	site := config.DefaultAPUSite()
	s, err := New(fetch.NewClient(time.Second, ""), cache.NewPageCache(1, time.Minute), site)
	require.NoError(t, err)

	u, err := s.DirectoryURL()
	require.NoError(t, err)
	assert.Equal(t, "http://www.apu.edu/clas/faculty", u)
}

func TestNew_InvalidSite(t *testing.T) {
	site := config.DefaultAPUSite()
	site.RootURL = ""
	_, err := New(fetch.NewClient(time.Second, ""), cache.NewPageCache(1, time.Minute), site)
	assert.Error(t, err)
}
