package catalog

var defaultTracks = []Track{
	{ID: "new_boarding", Label: "Boarding – New Music", Description: "Emirates new boarding music.", Source: "emirates new boarding music.mp3"},
	{ID: "old_boarding", Label: "Boarding – Old Music", Description: "Emirates old boarding music.", Source: "emirates old boarding music.mp3"},
	{ID: "safety_generic", Label: "Safety – Generic", Description: "Generic Emirates safety video music.", Source: "emirates safety video music.mp3"},
	{ID: "safety_a350", Label: "Safety – A350", Description: "Emirates A350 safety video audio.", Source: "emirates a350 safety video.mp3"},
	{ID: "safety_a380", Label: "Safety – A380", Description: "Emirates A380 safety video audio.", Source: "emirates a380 safety video.mp3"},
	{ID: "safety_b777", Label: "Safety – Boeing 777", Description: "Emirates Boeing 777 safety video audio.", Source: "emirates boeing 777 safety video.mp3"},
	{ID: "welcome_ice", Label: "Welcome Onboard – ICE", Description: "Standard ICE welcome onboard announcement.", Source: "welcome onboard ice.mp3"},
	{ID: "welcome_ice_old", Label: "Welcome Onboard – ICE (Old)", Description: "Legacy ICE welcome onboard announcement.", Source: "welcome onboard ice old.mp3"},
	{ID: "welcome_dubai", Label: "Welcome to Dubai", Description: "Arrival welcome to Dubai.", Source: "welcome to dubai.mp3"},
	{ID: "i_want_to_fly_world", Label: "I Want to Fly the World", Description: "“I want to fly the world” music.", Source: "i want to fly the world music.mp3"},
}

// Default returns the built-in IFE catalog.
func Default() *Catalog {
	c, err := New(defaultTracks)
	if err != nil {
		panic("catalog: built-in tracks are invalid: " + err.Error())
	}
	return c
}
