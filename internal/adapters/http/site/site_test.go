package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a mux with the landing page", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		serve := func(method, path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(method, path, http.NoBody))
			return w
		}

		Convey("When requesting the root path", func() {
			w := serve(http.MethodGet, "/")

			Convey("Then the page links to the API docs", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(w.Body.String(), ShouldContainSubstring, `href="/api-docs"`)
			})
		})

		Convey("When sending HEAD", func() {
			w := serve(http.MethodHead, "/")

			Convey("Then headers come back without a body", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.Len(), ShouldEqual, 0)
			})
		})

		Convey("When requesting an unknown path", func() {
			So(serve(http.MethodGet, "/nope").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When posting to the root", func() {
			So(serve(http.MethodPost, "/").Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a nil mux", t, func() {
		So(func() { Register(context.Background(), nil) }, ShouldPanic)
	})
}
