package nft_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/okian/devxbattle/internal/adapters/nft"
	"github.com/okian/devxbattle/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type indexer struct {
	*httptest.Server
	mu   sync.Mutex
	last map[string]any
}

// newIndexer serves ownerships for wallet 0xabc and metadata documents.
func newIndexer(t *testing.T) *indexer {
	t.Helper()
	ix := &indexer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		ix.mu.Lock()
		ix.last = req.Variables
		ix.mu.Unlock()

		where, _ := req.Variables["where"].(map[string]any)
		owner, _ := where["owner_address"].(map[string]any)
		switch owner["_eq"] {
		case "0xabc":
			fmt.Fprintf(w, `{"data":{"current_token_ownerships_v2":[
				{"owner_address":"0xabc","current_token_data":{"collection_id":"c1","token_name":"Dragon #1","token_uri":"%s/meta/dragon.json"}},
				{"owner_address":"0xabc","current_token_data":{"collection_id":"c1","token_name":"Dragon #2","token_uri":"%s/meta/missing.json"}}]}}`, ix.URL, ix.URL)
		case "0xerr":
			fmt.Fprint(w, `{"errors":[{"message":"field not found"}]}`)
		default:
			fmt.Fprint(w, `{"data":{"current_token_ownerships_v2":[]}}`)
		}
	})
	mux.HandleFunc("/meta/dragon.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"name":"Dragon","image":"https://img/d.png","attributes":[{"trait_type":"power","value":40},{"trait_type":"element","value":"fire"}]}`)
	})
	mux.HandleFunc("/meta/garbage.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html>`)
	})
	mux.HandleFunc("/ipfs/Qm123", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"name":"Pinned","attributes":[]}`)
	})
	ix.Server = httptest.NewServer(mux)
	t.Cleanup(ix.Close)
	return ix
}

func (ix *indexer) client() *nft.Client {
	return nft.New(nft.WithIndexerURL(ix.URL+"/graphql"), nft.WithIPFSGateway(ix.URL+"/ipfs"))
}

func (ix *indexer) lastVariables() map[string]any {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.last
}

func TestFetchOwnership(t *testing.T) {
	Convey("Given an indexer", t, func() {
		ix := newIndexer(t)
		c := ix.client()
		ctx := context.Background()

		Convey("When the wallet owns tokens", func() {
			tokens, err := c.FetchOwnership(ctx, "0xabc", "")

			Convey("Then they are returned in indexer order", func() {
				So(err, ShouldBeNil)
				So(len(tokens), ShouldEqual, 2)
				So(tokens[0].TokenName, ShouldEqual, "Dragon #1")
				So(tokens[0].CollectionID, ShouldEqual, "c1")
			})
		})

		Convey("When a hostile wallet string is used", func() {
			wallet := `0x"} }) { evil }`
			_, err := c.FetchOwnership(ctx, wallet, "")

			Convey("Then it travels as a variable and finds nothing", func() {
				So(errors.Is(err, nft.ErrNoTokensFound), ShouldBeTrue)
				where := ix.lastVariables()["where"].(map[string]any)
				So(where["owner_address"].(map[string]any)["_eq"], ShouldEqual, wallet)
			})
		})

		Convey("When filtering by collection", func() {
			_, err := c.FetchOwnership(ctx, "0xabc", "c1")

			Convey("Then the filter is sent", func() {
				So(err, ShouldBeNil)
				where := ix.lastVariables()["where"].(map[string]any)
				So(where, ShouldContainKey, "current_token_data")
			})
		})

		Convey("When the indexer reports GraphQL errors", func() {
			_, err := c.FetchOwnership(ctx, "0xerr", "")

			Convey("Then the error is an upstream failure", func() {
				So(errors.Is(err, nft.ErrIndexer), ShouldBeTrue)
				So(errors.Is(err, model.ErrUpstream), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "field not found")
			})
		})

		Convey("When the wallet owns nothing", func() {
			_, err := c.FetchOwnership(ctx, "0xempty", "")

			Convey("Then the error is a not-found", func() {
				So(errors.Is(err, nft.ErrNoTokensFound), ShouldBeTrue)
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestFetchMetadata(t *testing.T) {
	Convey("Given metadata documents", t, func() {
		ix := newIndexer(t)
		c := ix.client()
		ctx := context.Background()

		Convey("Then a valid document decodes", func() {
			set, err := c.FetchMetadata(ctx, ix.URL+"/meta/dragon.json")
			So(err, ShouldBeNil)
			So(set.Name, ShouldEqual, "Dragon")
			So(set.ImageURI, ShouldEqual, "https://img/d.png")
			So(len(set.Attributes), ShouldEqual, 2)
			n, ok := set.Attributes[0].Value.Number()
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 40.0)
		})

		Convey("Then ipfs URIs go through the gateway", func() {
			set, err := c.FetchMetadata(ctx, "ipfs://Qm123")
			So(err, ShouldBeNil)
			So(set.Name, ShouldEqual, "Pinned")
		})

		Convey("Then failures are metadata fetch errors", func() {
			for _, uri := range []string{
				ix.URL + "/meta/missing.json",
				ix.URL + "/meta/garbage.json",
				"file:///etc/passwd",
				"not a uri",
			} {
				_, err := c.FetchMetadata(ctx, uri)
				So(errors.Is(err, nft.ErrMetadataFetch), ShouldBeTrue)
				So(strings.Contains(err.Error(), "could not fetch NFT metadata"), ShouldBeTrue)
			}
		})
	})
}

func TestFirstToken(t *testing.T) {
	Convey("Given a wallet owning tokens", t, func() {
		ix := newIndexer(t)
		tok, set, err := ix.client().FirstToken(context.Background(), "0xabc")

		Convey("Then the first token and its metadata are returned", func() {
			So(err, ShouldBeNil)
			So(tok.TokenName, ShouldEqual, "Dragon #1")
			So(set.Name, ShouldEqual, "Dragon")
		})
	})
}
