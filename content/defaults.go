package content

var defaults = Bundle{
	RecipientName:      "Sairam",
	LandingSubtitle:    "Your partner made something for you.",
	LetterIntro:        "From your partner.",
	SuccessMainMessage: "You're my person. I'm glad we're doing everything together.",
	ValentineMessage:   "Happy Valentine's Day thango! You make my life brighter, happier, and more beautiful every day.",
	FooterSignOff:      "— Your partner",
	LetterLines: []string{
		"I've been thinking about us, and I just wanted to put my feelings into words.",
		"It's the little things that mean the most to me: the way you lovingly cook special things for me, your smile when something makes you laugh, the comfort of just being with you.",
		"You make my ordinary days feel special, and my life feels better because of you. I don't say it enough, but I truly cherish you.",
		"Happy Valentine's. I made this with a lot of love, just like what I feel for you.",
	},
	Reasons: []string{
		"You encourage me. Always.",
		"You console me when I'm down.",
		"You listen to me, all my polambals.",
		"You never raise your voice at me.",
		"You support me in whatever I do.",
	},
	Photos: []string{
		"1.jpeg", "2.jpeg", "3.jpeg", "4.jpeg", "5.jpeg", "6.jpeg", "7.jpeg", "8.jpeg",
		"9.jpeg", "10.jpeg", "11.jpeg", "12.jpeg", "13.jpeg", "14.jpeg",
		"WhatsApp Image 2026-02-08 at 12.40.06 PM.jpeg",
		"WhatsApp Image 2026-02-08 at 12.40.07 PM (1).jpeg",
	},
	PhotoCaptions: []string{
		"This is us. And I wouldn't want it any other way. 💕",
		"You + me = my favourite equation. ❤️",
		"Every moment with you feels like coming home. 🏠",
		"Life is better with you in the frame. 📸",
		"Forever isn't long enough. Here's to us. 💝",
		"Every normal day feels special because of you. 💕",
		"You make my world brighter. ❤️",
		"Together is my favourite place to be. 🏠",
		"God placed your hand in mine. Now we walk together, forever. 💝",
		"Here's to us, and all our best moments. 📸",
		"Love you more every day. 💕",
		"Every snapshot, every memory, with you. 💝",
		"One more reason to smile. 💕",
		"First dance as Mr. & Mrs. 🤍",
		"Flower over my head, love by my side 🌸🤍",
		"You don't just give me flowers, you make me feel cherished. 💕",
	},
	SongPath: "/songs/love-song.mp3",
}

// Default returns a fresh copy of the shipped bundle.
func Default() Bundle {
	return defaults.Clone()
}
