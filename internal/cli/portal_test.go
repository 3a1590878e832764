package cli

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const listingRow = `<tr>
<td>1</td>
<td>Mo<br>02.03.2099<br>15:00</td>
<td>Kreisliga A<br>540011</td>
<td></td>
<td>SV Heim<br>Sportplatz</td>
<td>FC Gast</td>
<td></td>
<td>SR<br>Max Muster<br>Nord<img alt="%s"></td>
<td></td>
</tr>`

// stubPortal is a minimal portal: no credential checks, one listing for everyone
type stubPortal struct {
	server *httptest.Server

	mu      sync.Mutex
	listing string
}

func newStubPortal(t *testing.T) *stubPortal {
	t.Helper()

	sp := &stubPortal{}
	mux := http.NewServeMux()

	mux.HandleFunc("/spielplus/login.do", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html></html>`)
	})
	mux.HandleFunc("/spielplus/oauth/login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><form id="kc-form-login" method="post" action="/authenticate"></form></html>`)
	})
	mux.HandleFunc("/authenticate", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><a href="/sria/start.do">Schiriansetzung</a></html>`)
	})
	mux.HandleFunc("/sria/start.do", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><a href="/sria/ansetzung.do">Ansetzung</a></html>`)
	})
	mux.HandleFunc("/sria/ansetzung.do", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html></html>`)
	})
	mux.HandleFunc("/sria/mod_sria/offenespielelist.do", func(w http.ResponseWriter, r *http.Request) {
		sp.mu.Lock()
		listing := sp.listing
		sp.mu.Unlock()
		fmt.Fprintf(w, `<html><table class="sportView"><tr><th>Nr</th></tr>%s</table></html>`, listing)
	})

	sp.server = httptest.NewServer(mux)
	t.Cleanup(sp.server.Close)

	sp.setStatus("Ansetzung nicht bestätigt.")
	return sp
}

// setStatus lists one match whose referee icon carries alt
func (sp *stubPortal) setStatus(alt string) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.listing = fmt.Sprintf(listingRow, alt)
}

func (sp *stubPortal) clear() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.listing = `<tr><td colspan="9">Keine Einträge gefunden!</td></tr>`
}

func (sp *stubPortal) config(t *testing.T) string {
	t.Helper()

	return writeConfig(t, `
portal:
  base_url: `+sp.server.URL+`
  username: schiri
  password: geheim
  timezone: UTC
groups:
  Kreis Nord:
    group: nord
    referees: [Muster_Max]
league_names:
  Kreisliga A: KL A
`)
}
