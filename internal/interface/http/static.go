package http

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// staticFiles serves the frontend from one or more directories, first match wins.
type staticFiles struct {
	roots []http.Dir
	index string
}

func newStaticFiles(roots []string, index string) *staticFiles {
	dirs := make([]http.Dir, 0, len(roots))
	for _, r := range roots {
		dirs = append(dirs, http.Dir(r))
	}
	return &staticFiles{roots: dirs, index: index}
}

// Index serves the entry page for GET /.
func (s *staticFiles) Index(c *gin.Context) {
	if !s.serve(c, "/"+s.index) {
		abortWithError(c, notFound())
	}
}

// Fallback serves any other static path, else 404.
func (s *staticFiles) Fallback(c *gin.Context) {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		if s.serve(c, c.Request.URL.Path) {
			return
		}
	}
	abortWithError(c, notFound())
}

func (s *staticFiles) serve(c *gin.Context, requestPath string) bool {
	name := path.Clean("/" + requestPath)
	for _, root := range s.roots {
		f, err := root.Open(name)
		if err != nil {
			continue
		}
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			f.Close()
			continue
		}
		http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
		f.Close()
		c.Abort()
		return true
	}
	return false
}
