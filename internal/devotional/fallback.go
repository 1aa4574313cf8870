package devotional

import "selah/api/internal/store"

// fallbackDevotional is returned whenever generation or parsing fails.
// Availability beats freshness: the endpoint always hands the caller usable
// content in the same shape as a generated devotional.
func fallbackDevotional() Parsed {
	return Parsed{
		Title:          "A Paz de Deus",
		Content:        "A paz que vem de Deus é diferente de qualquer paz que o mundo pode oferecer. É uma paz que permanece mesmo em meio às tempestades da vida. Quando entregamos nossas preocupações a Deus em oração, Ele promete guardar nossos corações e mentes. Hoje, escolha confiar em Deus com cada detalhe da sua vida.",
		Verse:          "E a paz de Deus, que excede todo o entendimento, guardará o coração e a mente de vocês em Cristo Jesus.",
		VerseReference: "Filipenses 4:7",
		MusicSuggestions: []store.MusicSuggestion{
			{Name: "A Paz do Céu", Artist: "Anderson Freire", Country: "Brasil"},
			{Name: "Deus Cuida de Mim", Artist: "Kleber Lucas", Country: "Brasil"},
			{Name: "Peace", Artist: "Hillsong Worship", Country: "Internacional"},
		},
	}
}
