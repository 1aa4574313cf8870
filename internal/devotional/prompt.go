package devotional

import "fmt"

// One nominal session shared by every call: the provider keeps no
// per-user conversational memory.
const sessionID = "devotional_gen"

const systemInstruction = "Você é um assistente espiritual que cria devocionais cristãos inspiradores em português."

const promptTemplate = `Crie um devocional cristão completo em português com os seguintes elementos:

1. TÍTULO: Um título inspirador e curto
2. CONTEÚDO: Um texto devocional de 200-300 palavras que seja edificante, reflexivo e prático
3. VERSÍCULO: Um versículo bíblico relevante (inclua referência completa - livro, capítulo e versículo)
4. MÚSICAS: Sugira 3 músicas gospel (2 brasileiras e 1 internacional) relacionadas ao tema

%s

Formato da resposta:
TÍTULO: [título aqui]
CONTEÚDO: [conteúdo aqui]
VERSÍCULO: [versículo completo aqui]
REFERÊNCIA: [Livro Capítulo:Versículo]
MÚSICA_1: [Nome - Artista - País]
MÚSICA_2: [Nome - Artista - País]
MÚSICA_3: [Nome - Artista - País]`

// BuildPrompt renders the generation instruction. A theme hint is embedded
// as a suggestion; without one the provider picks the theme.
func BuildPrompt(theme string) string {
	themeLine := "Escolha um tema espiritual relevante para hoje."
	if theme != "" {
		themeLine = "Tema sugerido: " + theme
	}
	return fmt.Sprintf(promptTemplate, themeLine)
}
