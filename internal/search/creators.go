package search

// SeedCreators is the built-in creator directory.
func SeedCreators() []Creator {
	return []Creator{
		{ID: "creator-1", Name: "Aria Chen", Specialty: "Sci-Fi worldbuilding", Followers: 12500, Rating: 4.8},
		{ID: "creator-2", Name: "Marcus Webb", Specialty: "Dark fantasy epics", Followers: 8300, Rating: 4.6},
		{ID: "creator-3", Name: "Luna Okafor", Specialty: "Cyberpunk noir", Followers: 15200, Rating: 4.9},
		{ID: "creator-4", Name: "Diego Santos", Specialty: "Mythic adventure", Followers: 5100, Rating: 4.4},
		{ID: "creator-5", Name: "Yuki Tanaka", Specialty: "Slice of life and romance", Followers: 9700, Rating: 4.7},
	}
}
