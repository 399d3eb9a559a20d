package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	service "github.com/okian/devxbattle/internal/app"
	"github.com/okian/devxbattle/internal/config"
	"github.com/okian/devxbattle/internal/domain/model"
	"github.com/okian/devxbattle/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func withProvider(provider string) *config.Config {
	cfg := config.New(context.Background())
	cfg.LLMProvider = provider
	return cfg
}

// upstream fakes GitHub, raw README hosting and token metadata on one server.
func upstream() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/users/")
		user, repos := strings.CutSuffix(rest, "/repos")
		if user == "ghost" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if repos {
			fmt.Fprintf(w, `[{"name":"%s-site","description":null,"language":"Go","stargazers_count":7,"open_issues_count":1,"fork":false}]`, user)
			return
		}
		fmt.Fprintf(w, `{"login":%q,"name":null,"avatar_url":"https://img/%s","followers":10,"following":2,"public_repos":1}`, user, user)
	})
	mux.HandleFunc("/raw/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "# hello")
	})
	mux.HandleFunc("/meta/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/meta/"), ".json")
		power := 5
		if name == "dragon" {
			power = 50
		}
		fmt.Fprintf(w, `{"name":%q,"image":"ipfs://%s","attributes":[{"trait_type":"Power","value":%d}]}`, name, name, power)
	})
	return httptest.NewServer(mux)
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service built from configuration against fake upstreams", t, func() {
		srv := upstream()
		defer srv.Close()

		cfg := withProvider("fake")
		cfg.GitHubAPIURL = srv.URL
		cfg.GitHubRawURL = srv.URL + "/raw"
		cfg.FetchTimeoutMS = 2000

		svc := service.New(service.WithConfig(cfg), service.WithLogger(logger.Nop()))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a GitHub battle runs against the unscripted generator", func() {
			res, err := svc.GitHubBattle(ctx, "alice", "bob")

			Convey("Then the profiles are fetched and the outcome is degraded", func() {
				So(err, ShouldBeNil)
				So(res.Left.Login, ShouldEqual, "alice")
				So(res.Left.Readme, ShouldEqual, "# hello")
				So(len(res.Right.TopRepositories), ShouldEqual, 1)
				So(res.Outcome.Degraded, ShouldBeTrue)
				So(res.Outcome.Winner, ShouldEqual, "")
				So(res.Outcome.Narrative, ShouldNotBeBlank)
			})
		})

		Convey("When one GitHub user does not exist", func() {
			_, err := svc.GitHubBattle(ctx, "alice", "ghost")

			Convey("Then the battle fails as not found", func() {
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When an NFT battle runs", func() {
			res, err := svc.NFTBattle(ctx,
				model.NFTCombatant("", srv.URL+"/meta/dragon.json"),
				model.NFTCombatant("", srv.URL+"/meta/slime.json"))

			Convey("Then identities fall back to the NFT names", func() {
				So(err, ShouldBeNil)
				So(res.Outcome.Winner, ShouldEqual, "dragon")
				So(res.Outcome.Loser, ShouldEqual, "slime")
				So(res.Outcome.WinnerScore, ShouldBeGreaterThan, res.Outcome.LoserScore)
			})
		})

		Convey("When accounts are used with the default memory store", func() {
			_, created, err := svc.Authenticate(ctx, "alice", "0xa")

			Convey("Then they are stored", func() {
				So(err, ShouldBeNil)
				So(created, ShouldBeTrue)
				u, err := svc.Login(ctx, "", "0xa")
				So(err, ShouldBeNil)
				So(u.Username, ShouldEqual, "alice")
				So(svc.GetStats()["sbtUploads"], ShouldEqual, false)
			})
		})
	})
}
