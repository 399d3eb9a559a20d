package github_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/okian/devxbattle/internal/adapters/github"
	"github.com/okian/devxbattle/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeGitHub struct {
	*httptest.Server
	authHeader atomic.Value
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{}
	mux := http.NewServeMux()
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		f.authHeader.Store(r.Header.Get("Authorization"))
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/users/"), "/")
		user := parts[0]
		switch user {
		case "alice":
		case "broken":
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "{not json")
			return
		case "limited":
			w.WriteHeader(http.StatusForbidden)
			return
		default:
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if len(parts) > 1 && parts[1] == "repos" {
			if r.URL.Query().Get("sort") != "updated" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			repos := make([]string, 0, 20)
			for i := 0; i < 20; i++ {
				repos = append(repos, fmt.Sprintf(`{"name":"repo%d","description":null,"language":"Go","stargazers_count":%d,"open_issues_count":1,"fork":%t}`, i, i, i%2 == 0))
			}
			fmt.Fprint(w, "["+strings.Join(repos, ",")+"]")
			return
		}
		fmt.Fprint(w, `{"login":"alice","name":"Alice","avatar_url":"https://a/1.png","bio":null,"company":"ACME","location":null,"followers":42,"following":7,"public_repos":20}`)
	})
	mux.HandleFunc("/alice/alice/HEAD/README.md", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "# hi, I'm alice")
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func newClient(f *fakeGitHub, opts ...github.Option) *github.Client {
	return github.New(append([]github.Option{github.WithAPIURL(f.URL), github.WithRawURL(f.URL + "/")}, opts...)...)
}

func TestFetchProfile(t *testing.T) {
	Convey("Given a GitHub API", t, func() {
		f := newFakeGitHub(t)
		c := newClient(f, github.WithToken("tok"))
		ctx := context.Background()

		Convey("When the user exists", func() {
			p, err := c.FetchProfile(ctx, "alice")

			Convey("Then the profile is decoded with null fields blank", func() {
				So(err, ShouldBeNil)
				So(p.Login, ShouldEqual, "alice")
				So(p.Name, ShouldEqual, "Alice")
				So(p.Bio, ShouldEqual, "")
				So(p.Company, ShouldEqual, "ACME")
				So(p.Followers, ShouldEqual, 42)
				So(p.PublicRepoCount, ShouldEqual, 20)
				So(f.authHeader.Load(), ShouldEqual, "Bearer tok")
			})
		})

		Convey("When the user does not exist", func() {
			_, err := c.FetchProfile(ctx, "ghost404")

			Convey("Then the error is a not-found", func() {
				So(errors.Is(err, github.ErrProfileNotFound), ShouldBeTrue)
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the API refuses", func() {
			_, err := c.FetchProfile(ctx, "limited")

			Convey("Then the error is an upstream failure", func() {
				So(errors.Is(err, model.ErrUpstream), ShouldBeTrue)
				So(errors.Is(err, model.ErrNotFound), ShouldBeFalse)
			})
		})

		Convey("When the body is not JSON", func() {
			_, err := c.FetchProfile(ctx, "broken")

			Convey("Then the error is a malformed response", func() {
				So(errors.Is(err, github.ErrMalformedResponse), ShouldBeTrue)
				So(errors.Is(err, model.ErrUpstream), ShouldBeTrue)
			})
		})

		Convey("When the server is down", func() {
			down := github.New(github.WithAPIURL("http://127.0.0.1:1"))
			_, err := down.FetchProfile(ctx, "alice")

			Convey("Then the error is an upstream failure", func() {
				So(errors.Is(err, model.ErrUpstream), ShouldBeTrue)
			})
		})
	})
}

func TestFetchRepositories(t *testing.T) {
	Convey("Given a user with twenty repositories", t, func() {
		f := newFakeGitHub(t)
		repos, err := newClient(f).FetchRepositories(context.Background(), "alice")

		Convey("Then only the first fifteen are kept in order", func() {
			So(err, ShouldBeNil)
			So(len(repos), ShouldEqual, model.MaxRepositories)
			So(repos[0].Name, ShouldEqual, "repo0")
			So(repos[14].Name, ShouldEqual, "repo14")
			So(repos[3].StarCount, ShouldEqual, 3)
			So(repos[0].IsFork, ShouldBeTrue)
			So(repos[0].Description, ShouldBeNil)
			So(*repos[0].Language, ShouldEqual, "Go")
		})
	})
}

func TestFetchReadme(t *testing.T) {
	Convey("Given the raw content host", t, func() {
		f := newFakeGitHub(t)
		c := newClient(f)
		ctx := context.Background()

		Convey("Then an existing README is returned", func() {
			So(c.FetchReadme(ctx, "alice"), ShouldEqual, "# hi, I'm alice")
		})

		Convey("Then a missing README yields the not-found sentinel", func() {
			So(c.FetchReadme(ctx, "bob"), ShouldEqual, model.ReadmeNotFound)
		})

		Convey("Then a transport failure yields the unavailable sentinel", func() {
			down := github.New(github.WithRawURL("http://127.0.0.1:1"))
			So(down.FetchReadme(ctx, "alice"), ShouldEqual, model.ReadmeUnavailable)
		})
	})
}

func TestFetchAll(t *testing.T) {
	Convey("Given a GitHub API", t, func() {
		f := newFakeGitHub(t)
		c := newClient(f)
		ctx := context.Background()

		Convey("When everything resolves", func() {
			p, err := c.FetchAll(ctx, "alice")

			Convey("Then profile, repositories and README are combined", func() {
				So(err, ShouldBeNil)
				So(p.Login, ShouldEqual, "alice")
				So(len(p.TopRepositories), ShouldEqual, 15)
				So(p.Readme, ShouldEqual, "# hi, I'm alice")
			})

			Convey("Then fetching twice yields the same data", func() {
				again, err := c.FetchAll(ctx, "alice")
				So(err, ShouldBeNil)
				So(again, ShouldResemble, p)
			})
		})

		Convey("When the profile is missing", func() {
			_, err := c.FetchAll(ctx, "ghost404")

			Convey("Then the whole fetch fails as not found", func() {
				So(errors.Is(err, github.ErrProfileNotFound), ShouldBeTrue)
			})
		})
	})
}
