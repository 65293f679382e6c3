package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// popupScript renders a minimal page that posts a message to the window that
// opened the OAuth popup and then closes it. The target origin is pinned to
// the frontend so the token can't leak to an unrelated opener.
func (m *Module) popupScript(w http.ResponseWriter, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<body>
<script>
  if (window.opener) {
    window.opener.postMessage(%s, %q);
  }
  window.close();
</script>
</body>
</html>`, body, m.config.FrontendOrigin)
}
