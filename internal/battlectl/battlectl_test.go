package battlectl_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/devxbattle/internal/battlectl"
	. "github.com/smartystreets/goconvey/convey"
)

type recorded struct {
	method string
	path   string
	query  map[string]string
	body   map[string]string
}

func server(last *recorded) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last.method, last.path = r.Method, r.URL.Path
		last.query = map[string]string{}
		for k := range r.URL.Query() {
			last.query[k] = r.URL.Query().Get(k)
		}
		last.body = nil
		if r.Method == http.MethodPost {
			b, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(b, &last.body)
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("username") == "ghost" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"not_found","message":"Failed to fetch user details: not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"winner":"alice","winnerScore":80}`))
	}))
}

func TestClient(t *testing.T) {
	Convey("Given a client pointed at a recording server", t, func() {
		var last recorded
		srv := server(&last)
		defer srv.Close()
		c := battlectl.NewClient(&battlectl.Config{BaseURL: srv.URL + "/", Timeout: time.Second})
		ctx := context.Background()

		Convey("When running a GitHub battle", func() {
			resp, err := c.GitHubBattle(ctx, "alice", "bob")

			Convey("Then both usernames go in the query", func() {
				So(err, ShouldBeNil)
				So(resp.Status, ShouldEqual, http.StatusOK)
				So(last.path, ShouldEqual, "/battle")
				So(last.query, ShouldResemble, map[string]string{"username1": "alice", "username2": "bob"})
			})
		})

		Convey("When running an NFT battle without display names", func() {
			_, err := c.NFTBattle(ctx, "ipfs://a", "ipfs://b", "", "")

			Convey("Then only the type and URIs are sent", func() {
				So(err, ShouldBeNil)
				So(last.query, ShouldResemble, map[string]string{"type": "nft", "nftUri1": "ipfs://a", "nftUri2": "ipfs://b"})
			})
		})

		Convey("When authenticating", func() {
			_, err := c.Auth(ctx, "alice", "0xabc")

			Convey("Then a JSON body is posted", func() {
				So(err, ShouldBeNil)
				So(last.method, ShouldEqual, http.MethodPost)
				So(last.path, ShouldEqual, "/auth")
				So(last.body, ShouldResemble, map[string]string{"username": "alice", "walletAddress": "0xabc"})
			})
		})

		Convey("When the server answers non-2xx", func() {
			resp, err := c.Profile(ctx, "ghost")

			Convey("Then a StatusError carries the body", func() {
				var se *battlectl.StatusError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Status, ShouldEqual, http.StatusNotFound)
				So(string(se.Body), ShouldContainSubstring, "Failed to fetch user details")
				So(resp.Status, ShouldEqual, http.StatusNotFound)
			})
		})
	})

	Convey("Given a server that is not listening", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		c := battlectl.NewClient(&battlectl.Config{BaseURL: url, Timeout: time.Second})

		Convey("Then requests fail with ErrRequest", func() {
			_, err := c.Health(context.Background())
			So(errors.Is(err, battlectl.ErrRequest), ShouldBeTrue)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a recording server", t, func() {
		var last recorded
		srv := server(&last)
		defer srv.Close()
		cfg := &battlectl.Config{BaseURL: srv.URL, Timeout: time.Second}
		var out bytes.Buffer

		Convey("When a call succeeds", func() {
			err := battlectl.Run(context.Background(), cfg, &out, "github", func(ctx context.Context, c *battlectl.Client) (battlectl.Response, error) {
				return c.GitHubBattle(ctx, "alice", "bob")
			})

			Convey("Then the body is printed indented", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldEqual, "{\n  \"winner\": \"alice\",\n  \"winnerScore\": 80\n}\n")
			})
		})

		Convey("When a call answers non-2xx", func() {
			err := battlectl.Run(context.Background(), cfg, &out, "profile", func(ctx context.Context, c *battlectl.Client) (battlectl.Response, error) {
				return c.Profile(ctx, "ghost")
			})

			Convey("Then the body is printed and the error returned", func() {
				So(err, ShouldNotBeNil)
				So(out.String(), ShouldContainSubstring, `"code": "not_found"`)
			})
		})
	})
}
