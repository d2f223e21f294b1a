package services

import "github.com/ivanpetrenko/authgate/internal/randx"

// Word lists for naming anonymous users. The pair (color, animal) is drawn
// uniformly at random and stored as first/last name until the user registers
// a real profile.
var (
	colors = []string{
		"amber", "aqua", "azure", "beige", "black", "blue", "bronze",
		"brown", "coral", "crimson", "cyan", "gold", "gray", "green",
		"indigo", "ivory", "jade", "lavender", "lime", "magenta", "maroon",
		"navy", "olive", "orange", "pink", "plum", "purple", "red", "rose",
		"ruby", "salmon", "scarlet", "silver", "tan", "teal", "violet",
		"white", "yellow",
	}

	animals = []string{
		"alligator", "antelope", "badger", "bat", "bear", "beaver", "bison",
		"buffalo", "camel", "cheetah", "cobra", "condor", "cougar", "coyote",
		"crane", "dolphin", "eagle", "elephant", "falcon", "ferret", "fox",
		"gazelle", "giraffe", "hawk", "heron", "jaguar", "koala", "lemur",
		"leopard", "lion", "lynx", "marmot", "moose", "narwhal", "ocelot",
		"otter", "owl", "panda", "panther", "pelican", "penguin", "puma",
		"rabbit", "raccoon", "raven", "salamander", "seal", "shark", "sloth",
		"swan", "tiger", "toucan", "turtle", "walrus", "wolf", "wolverine",
		"wombat", "zebra",
	}
)

// randomName draws an anonymous user's (first, last) name pair.
func randomName(r randx.Source) (first, last string) {
	return colors[r.IntN(len(colors))], animals[r.IntN(len(animals))]
}
