package llm_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/devxbattle/internal/adapters/llm"
	"github.com/okian/devxbattle/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFake(t *testing.T) {
	Convey("Given a scripted fake", t, func() {
		ctx := context.Background()
		f := llm.NewFake("first", "second")

		Convey("Then replies come in order and the last one repeats", func() {
			a, err := f.Generate(ctx, llm.Request{Prompt: "p1"})
			So(err, ShouldBeNil)
			b, _ := f.Generate(ctx, llm.Request{Prompt: "p2"})
			c, _ := f.Generate(ctx, llm.Request{Prompt: "p3"})
			So([]string{a, b, c}, ShouldResemble, []string{"first", "second", "second"})
			So(len(f.Calls()), ShouldEqual, 3)
			So(f.Calls()[1].Prompt, ShouldEqual, "p2")
		})

		Convey("When unscripted", func() {
			text, err := llm.NewFake().Generate(ctx, llm.Request{})

			Convey("Then it answers the default reply", func() {
				So(err, ShouldBeNil)
				So(text, ShouldEqual, llm.DefaultFakeReply)
			})
		})

		Convey("When failing", func() {
			_, err := llm.FailingFake(errors.New("quota")).Generate(ctx, llm.Request{})

			Convey("Then the error is a generation error", func() {
				So(errors.Is(err, llm.ErrGeneration), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "quota")
			})
		})

		Convey("When a func fake returns blank text", func() {
			_, err := llm.FuncFake(func(llm.Request) (string, error) { return "  ", nil }).Generate(ctx, llm.Request{})

			Convey("Then it is an empty completion", func() {
				So(errors.Is(err, llm.ErrEmptyCompletion), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := f.Generate(cctx, llm.Request{})

			Convey("Then the call fails", func() {
				So(errors.Is(err, llm.ErrGeneration), ShouldBeTrue)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given provider names", t, func() {
		ctx := context.Background()

		Convey("Then known providers build", func() {
			for _, p := range []string{"anthropic", "OpenAI", "gemini", "fake"} {
				g, err := llm.New(ctx, llm.Config{Provider: p, APIKey: "k"})
				So(err, ShouldBeNil)
				So(g, ShouldNotBeNil)
			}
		})

		Convey("Then an unknown provider is rejected", func() {
			_, err := llm.New(ctx, llm.Config{Provider: "markov"})
			So(errors.Is(err, llm.ErrUnknownProvider), ShouldBeTrue)
		})

		Convey("Then every provider has a default model", func() {
			So(llm.DefaultModel("anthropic"), ShouldNotBeEmpty)
			So(llm.DefaultModel("openai"), ShouldNotBeEmpty)
			So(llm.DefaultModel("gemini"), ShouldNotBeEmpty)
		})
	})
}

type captured struct {
	body map[string]any
}

func stub(t *testing.T, status int, reply string, c *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if c != nil {
			_ = json.Unmarshal(raw, &c.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnthropic(t *testing.T) {
	Convey("Given a Messages API stub", t, func() {
		var c captured
		srv := stub(t, http.StatusOK, `{"id":"msg_1","type":"message","role":"assistant","model":"m",
			"content":[{"type":"text","text":"Winner: a (Score: 9/100) | Loser: b (Score: 1/100)\nroast"}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":5}}`, &c)
		g := llm.NewAnthropic(llm.Config{APIKey: "k", BaseURL: srv.URL + "/", DefaultModel: "claude-test"})

		Convey("When generating", func() {
			text, err := g.Generate(context.Background(), llm.Request{Prompt: "fight", MaxTokens: 1000})

			Convey("Then the text blocks are returned", func() {
				So(err, ShouldBeNil)
				So(text, ShouldStartWith, "Winner: a")
			})

			Convey("Then model and token budget are sent", func() {
				So(c.body["model"], ShouldEqual, "claude-test")
				So(c.body["max_tokens"], ShouldEqual, 1000.0)
			})
		})

		Convey("When the API fails", func() {
			bad := stub(t, http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, nil)
			g := llm.NewAnthropic(llm.Config{BaseURL: bad.URL + "/", DefaultModel: "m"})
			_, err := g.Generate(context.Background(), llm.Request{Prompt: "fight", MaxTokens: 10})

			Convey("Then the error is a generation error", func() {
				So(errors.Is(err, llm.ErrGeneration), ShouldBeTrue)
			})
		})
	})
}

func TestOpenAI(t *testing.T) {
	Convey("Given a Chat Completions stub", t, func() {
		var c captured
		srv := stub(t, http.StatusOK, `{"id":"c1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"message":{"role":"assistant","content":"an epic tale"},"finish_reason":"stop"}]}`, &c)
		g := llm.NewOpenAI(llm.Config{APIKey: "k", BaseURL: srv.URL + "/", DefaultModel: "gpt-test"})

		Convey("When generating with a model override", func() {
			text, err := g.Generate(context.Background(), llm.Request{Prompt: "fight", MaxTokens: 150, Model: "gpt-other"})

			Convey("Then the first choice is returned", func() {
				So(err, ShouldBeNil)
				So(text, ShouldEqual, "an epic tale")
				So(c.body["model"], ShouldEqual, "gpt-other")
			})
		})

		Convey("When the completion is empty", func() {
			empty := stub(t, http.StatusOK, `{"id":"c2","object":"chat.completion","created":1,"model":"m","choices":[]}`, nil)
			g := llm.NewOpenAI(llm.Config{APIKey: "k", BaseURL: empty.URL + "/", DefaultModel: "m"})
			_, err := g.Generate(context.Background(), llm.Request{Prompt: "fight", MaxTokens: 10})

			Convey("Then it is an empty completion", func() {
				So(errors.Is(err, llm.ErrEmptyCompletion), ShouldBeTrue)
			})
		})
	})
}

func TestGemini(t *testing.T) {
	Convey("Given a generateContent stub", t, func() {
		var c captured
		srv := stub(t, http.StatusOK, `{"candidates":[{"content":{"role":"model",
			"parts":[{"text":"Winner: a (Score: 9/100) | Loser: b (Score: 1/100)\n"},{"text":"roast"}]},
			"finishReason":"STOP"}]}`, &c)
		g := llm.NewGemini(context.Background(), llm.Config{APIKey: "k", BaseURL: srv.URL + "/", DefaultModel: "gemini-test"})

		Convey("When generating", func() {
			text, err := g.Generate(context.Background(), llm.Request{Prompt: "fight", MaxTokens: 150})

			Convey("Then the parts are joined", func() {
				So(err, ShouldBeNil)
				So(text, ShouldEqual, "Winner: a (Score: 9/100) | Loser: b (Score: 1/100)\nroast")
			})

			Convey("Then the token budget is sent", func() {
				gc, ok := c.body["generationConfig"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(gc["maxOutputTokens"], ShouldEqual, 150.0)
			})
		})

		Convey("When no candidate comes back", func() {
			empty := stub(t, http.StatusOK, `{"candidates":[]}`, nil)
			g := llm.NewGemini(context.Background(), llm.Config{APIKey: "k", BaseURL: empty.URL + "/", DefaultModel: "m"})
			_, err := g.Generate(context.Background(), llm.Request{Prompt: "fight", MaxTokens: 10})

			Convey("Then it is an empty completion", func() {
				So(errors.Is(err, llm.ErrEmptyCompletion), ShouldBeTrue)
			})
		})

		Convey("When the API fails", func() {
			bad := stub(t, http.StatusUnauthorized, `{"error":{"code":401,"message":"API key not valid","status":"UNAUTHENTICATED"}}`, nil)
			g := llm.NewGemini(context.Background(), llm.Config{APIKey: "k", BaseURL: bad.URL + "/", DefaultModel: "m"})
			_, err := g.Generate(context.Background(), llm.Request{Prompt: "fight", MaxTokens: 10})

			Convey("Then the error is a generation error", func() {
				So(errors.Is(err, llm.ErrGeneration), ShouldBeTrue)
			})
		})
	})

	Convey("Given no Gemini key anywhere", t, func() {
		t.Setenv("GOOGLE_API_KEY", "")
		t.Setenv("GEMINI_API_KEY", "")

		Convey("When the provider is built from config", func() {
			g, err := llm.New(context.Background(), llm.Config{Provider: "gemini"})

			Convey("Then it builds and the call fails as a generation error", func() {
				So(err, ShouldBeNil)
				So(g.Name(), ShouldEqual, llm.ProviderGemini)
				_, err := g.Generate(context.Background(), llm.Request{Prompt: "fight"})
				So(errors.Is(err, llm.ErrGeneration), ShouldBeTrue)
			})
		})
	})
}

func TestInstrument(t *testing.T) {
	Convey("Given an instrumented failing generator", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithOutput(&buf)), ShouldBeNil)
		g := llm.Instrument(llm.FuncFake(func(llm.Request) (string, error) {
			return "", errors.New("boom")
		}), logger.Get())

		Convey("When it is called", func() {
			_, err := g.Generate(context.Background(), llm.Request{Model: "m"})

			Convey("Then the failure is wrapped once and logged", func() {
				So(errors.Is(err, llm.ErrGeneration), ShouldBeTrue)
				So(g.Name(), ShouldEqual, llm.ProviderFake)
				So(buf.String(), ShouldContainSubstring, "generation failed")
				So(buf.String(), ShouldContainSubstring, "llm.provider=fake")
			})
		})
	})
}
