package portal

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

const listingHTML = `<html><body>
<table class="sportView">
<tr><th>Nr</th><th>Datum</th><th>Staffel</th><th></th><th>Heim</th><th>Gast</th><th></th><th>Team</th><th></th></tr>
<tr>
<td>1</td>
<td>Fr<br>01.03.2024<br>18:30</td>
<td>Bezirksliga Nord<br>340123456</td>
<td>&nbsp;</td>
<td>TSV Musterstadt<br>Sportpark&nbsp;Nord</td>
<td>FC   Beispiel</td>
<td></td>
<td>SR<br>Peter<br>(X)<img src="ok.gif" alt="Ansetzung bestätigt."><br>SRA1<br>SRA2<br>Maria<br>Y<img src="prov.gif" alt="Vorläufige Einteilung"></td>
<td><table><tr><td>Details</td></tr></table></td>
</tr>
<tr>
<td>2</td>
<td>tbd</td>
<td>Kreisliga A</td>
<td></td>
<td>SV Nord</td>
<td>SV Süd</td>
<td></td>
<td>SR<br>Peter<br>X</td>
<td></td>
</tr>
</table>
</body></html>`

const noEntriesHTML = `<html><body>
<table class="sportView">
<tr><th>Nr</th><th>Datum</th></tr>
<tr><td colspan="9">Keine Einträge gefunden!</td></tr>
</table>
</body></html>`

const expiredHTML = `<html><body><p>Ihre Sitzung ist abgelaufen.</p></body></html>`

// fakePortal serves the login flow and the assignment search
type fakePortal struct {
	server *httptest.Server

	mu          sync.Mutex
	listings    map[string]string // surname -> listing page
	forms       []url.Values
	omitForm    bool
	failLanding bool
	expired     bool
}

func newFakePortal(t *testing.T) *fakePortal {
	t.Helper()

	fp := &fakePortal{listings: make(map[string]string)}
	mux := http.NewServeMux()

	mux.HandleFunc("/spielplus/login.do", func(w http.ResponseWriter, r *http.Request) {
		if fp.flag(func() bool { return fp.failLanding }) {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "landing", Path: "/"})
		fmt.Fprint(w, `<html><body>SpielPLUS</body></html>`)
	})

	mux.HandleFunc("/spielplus/oauth/login", func(w http.ResponseWriter, r *http.Request) {
		if fp.flag(func() bool { return fp.omitForm }) {
			fmt.Fprint(w, `<html><body><form id="other"></form></body></html>`)
			return
		}
		fmt.Fprint(w, fp.loginPage())
	})

	mux.HandleFunc("/auth/realms/dfbnet/login-actions/authenticate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, cookieErr := r.Cookie("JSESSIONID")
		if cookieErr != nil || r.PostForm.Get("username") != "user" || r.PostForm.Get("password") != "secret" {
			fmt.Fprint(w, fp.loginPage())
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "auth", Value: "ok", Path: "/"})
		http.Redirect(w, r, "/spielplus/start", http.StatusFound)
	})

	mux.HandleFunc("/spielplus/start", fp.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<a href="/sria/old.do">Schiriansetzung (alt)</a>
<a href="../sria/start.do">Schiriansetzung</a>
</body></html>`)
	}))

	mux.HandleFunc("/sria/start.do", fp.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="mod_sria/ansetzung.do">Ansetzung</a></body></html>`)
	}))

	mux.HandleFunc("/sria/mod_sria/ansetzung.do", fp.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><form name="search"></form></body></html>`)
	}))

	mux.HandleFunc("/sria/mod_sria/offenespielelist.do", fp.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		fp.mu.Lock()
		fp.forms = append(fp.forms, r.PostForm)
		page, ok := fp.listings[r.PostForm.Get("srnachname")]
		expired := fp.expired
		fp.mu.Unlock()

		switch {
		case expired:
			fmt.Fprint(w, expiredHTML)
		case ok:
			fmt.Fprint(w, page)
		default:
			fmt.Fprint(w, noEntriesHTML)
		}
	}))

	fp.server = httptest.NewServer(mux)
	t.Cleanup(fp.server.Close)
	return fp
}

func (fp *fakePortal) loginPage() string {
	return fmt.Sprintf(`<html><body>
<form id="kc-form-login" method="post" action="%s/auth/realms/dfbnet/login-actions/authenticate?session_code=abc">
<input name="username"><input name="password" type="password">
</form></body></html>`, fp.server.URL)
}

func (fp *fakePortal) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("auth"); err != nil {
			fmt.Fprint(w, expiredHTML)
			return
		}
		next(w, r)
	}
}

// set mutates the portal's behavior while handlers may be running
func (fp *fakePortal) set(f func()) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	f()
}

func (fp *fakePortal) flag(f func() bool) bool {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return f()
}

func (fp *fakePortal) lastForm() url.Values {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if len(fp.forms) == 0 {
		return nil
	}
	return fp.forms[len(fp.forms)-1]
}

func newTestClient(t *testing.T, fp *fakePortal, policy Policy) *Client {
	t.Helper()

	c, err := New(Options{
		BaseURL:  fp.server.URL,
		Location: time.UTC,
		Policy:   policy,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	c.now = func() time.Time {
		return time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	}
	return c
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "defaults", opts: Options{}},
		{name: "custom base", opts: Options{BaseURL: "http://portal.test"}},
		{name: "relative base", opts: Options{BaseURL: "/portal"}, wantErr: true},
		{name: "unparseable base", opts: Options{BaseURL: "http://[::1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if c.opts.WindowDays != DefaultWindowDays {
				t.Errorf("WindowDays = %d, want %d", c.opts.WindowDays, DefaultWindowDays)
			}
			if c.opts.Timeout != Timeout {
				t.Errorf("Timeout = %v, want %v", c.opts.Timeout, Timeout)
			}
			if c.Policy() != PolicyBestEffort {
				t.Errorf("Policy() = %v, want best-effort", c.Policy())
			}
		})
	}
}
