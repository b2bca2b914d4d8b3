package content

// Merge overlays p onto base key by key. A supplied list replaces the base
// list entirely; lists are never merged element-wise.
func Merge(base Bundle, p Partial) Bundle {
	out := base.Clone()
	if p.RecipientName != nil {
		out.RecipientName = *p.RecipientName
	}
	if p.LandingSubtitle != nil {
		out.LandingSubtitle = *p.LandingSubtitle
	}
	if p.LetterIntro != nil {
		out.LetterIntro = *p.LetterIntro
	}
	if p.LetterLines != nil {
		out.LetterLines = cloneList(*p.LetterLines)
	}
	if p.Reasons != nil {
		out.Reasons = cloneList(*p.Reasons)
	}
	if p.Photos != nil {
		out.Photos = cloneList(*p.Photos)
	}
	if p.PhotoCaptions != nil {
		out.PhotoCaptions = cloneList(*p.PhotoCaptions)
	}
	if p.SuccessMainMessage != nil {
		out.SuccessMainMessage = *p.SuccessMainMessage
	}
	if p.ValentineMessage != nil {
		out.ValentineMessage = *p.ValentineMessage
	}
	if p.FooterSignOff != nil {
		out.FooterSignOff = *p.FooterSignOff
	}
	if p.SongPath != nil {
		out.SongPath = *p.SongPath
	}
	return out
}
