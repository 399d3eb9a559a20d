package prompt_test

import (
	"testing"

	"github.com/okian/devxbattle/internal/domain/model"
	"github.com/okian/devxbattle/internal/domain/prompt"
	"github.com/okian/devxbattle/internal/domain/verdict"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGitHubBattle(t *testing.T) {
	Convey("Given two profiles", t, func() {
		lang := "Go"
		p1 := model.GitHubProfile{Login: "alice", Followers: 10, Readme: model.ReadmeNotFound,
			TopRepositories: []model.RepoSummary{{Name: "battle-bot", Language: &lang, StarCount: 3}}}
		p2 := model.GitHubProfile{Login: "bob", Bio: "rust enjoyer"}

		text := prompt.GitHubBattle("alice", "bob", p1, p2)

		Convey("Then both serialized profiles are embedded", func() {
			So(text, ShouldContainSubstring, `**alice**: {"login":"alice"`)
			So(text, ShouldContainSubstring, `"stargazers_count":3`)
			So(text, ShouldContainSubstring, `"profile_readme":"No README found"`)
			So(text, ShouldContainSubstring, `**bob**: {"login":"bob"`)
		})

		Convey("Then the strict result line is requested", func() {
			So(text, ShouldContainSubstring, "Winner: [username] (Score: X/100) | Loser: [username] (Score: Y/100)")
			So(text, ShouldContainSubstring, "harsh and sarcastic")
		})

		Convey("Then the prompt itself is not mistaken for a verdict", func() {
			So(verdict.ParseHeader(text).Matched, ShouldBeFalse)
		})
	})
}

func TestNFTBattle(t *testing.T) {
	Convey("Given two scored NFTs", t, func() {
		n1 := prompt.NFTSide{
			Attributes: model.NFTAttributeSet{Name: "Dragon", Attributes: []model.NFTAttribute{
				{TraitType: "power", Value: model.NumberValue(42)},
			}},
			Score: 42,
		}
		n2 := prompt.NFTSide{Attributes: model.NFTAttributeSet{Name: "Slime"}, Score: 0}

		text := prompt.NFTBattle(n1, n2)

		Convey("Then names, attributes and scores are listed", func() {
			So(text, ShouldContainSubstring, "NFT 1 (Dragon):")
			So(text, ShouldContainSubstring, `Attributes: [{"trait_type":"power","value":42}]`)
			So(text, ShouldContainSubstring, "Score: 42")
			So(text, ShouldContainSubstring, "NFT 2 (Slime):\nAttributes: []\nScore: 0")
		})

		Convey("Then no result line is requested", func() {
			So(text, ShouldNotContainSubstring, "Loser:")
			So(text, ShouldContainSubstring, "about 100 words")
		})
	})
}

func TestRoast(t *testing.T) {
	Convey("Given a challenger and a defender", t, func() {
		text := prompt.Roast("neo", []model.NFTAttribute{{TraitType: "hat", Value: model.StringValue("fedora")}}, "smith", nil)

		Convey("Then both sides and the roast format appear", func() {
			So(text, ShouldContainSubstring, "Challenger (neo):")
			So(text, ShouldContainSubstring, `"value":"fedora"`)
			So(text, ShouldContainSubstring, "Defender (smith):\nAttributes: []")
			So(text, ShouldContainSubstring, "Winner: [username]\nRoast:")
		})
	})
}
