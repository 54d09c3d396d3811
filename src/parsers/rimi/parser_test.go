package rimi

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/spendfolio/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

// OCR output of the purchase section shared by all receipt layouts below.
const standardProductPart = `Tualetes papire Zewa Delicate
Care, gab

1 gab X 4,99 EUR 4,99 8
Atl -2,00 Gala cena 2,99
Tostermaize franéu

Brioche 450g

1 gab x 2,55 EUR 2,55 8

Sviests Exporta 82,5% 200g

1 gab X 3,09 EUR 3,09 A
Atl -0,50 Gala cena 2,59

Sviests Smltene 82% 200g

1 gab X 2,99 EUR 2,99 8`

var expectedBlocks = [][]string{
	{
		"Tualetes papire Zewa Delicate",
		"Care, gab",
		"1 gab X 4,99 EUR 4,99 8",
		"Atl -2,00 Gala cena 2,99",
	},
	{
		"Tostermaize franēu",
		"Brioche 450g",
		"1 gab x 2,55 EUR 2,55 8",
	},
	{
		"Sviests Exporta 82,5% 200g",
		"1 gab X 3,09 EUR 3,09 A",
		"Atl -0,50 Gala cena 2,59",
	},
	{
		"Sviests Smltene 82% 200g",
		"1 gab X 2,99 EUR 2,99 8",
	},
}

func TestParsePurchases(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "multiple newline groups before products",
			content: `RimilY

Katra diena arvien labaka

SIA RIME LATVIA
Jur adrese Riga, A Deglava iela 161
Rimi Super Agenskalns (Riga)

Kase Nr 33,

PVN makeataja numurs LVv40001234567
Sasijas mymurs SP-LVO0123
Ceks —
Elektroniska izdruka
GOCHNRCOCONGNONE S16





KLIENTS



` + standardProductPart + `





ATLALDES

Tualetes papirs Zewa Delicate
Care, 8gab -2,00
Izmantota Mans Rim nauda -0,81
Citas akerjas =1) 66



Tavs 1etaupijuns 6,21



Makeajanu karte
Apnakaa

BEZKONTAKTA KARTE
VISA BEZKONTAKTA

BANKAS KVITS NR 123456
TERMINALA ID 12345678
TIRGOPAJA ID 1234567
LALKS 2020-01-13 12 59 58`,
		},
		{
			name: "single newline group before products",
			content: `RimiV

Katra diena arvien tabaka

SIA RIME LATVIA
Jur. adrese “Riga, A. Deglava iela 161
Rimi Super Agenskalns (Riga)

Kase Nr. 31

PVN _maksataja numurs. LVv40001234567
Sasijas nymure: SP-LVO0123
= Ceks —
= Elektromiska izdruka
KLIENTS. YXOCCCOOOORIOKE S16





` + standardProductPart + `



ATLALDES
Citas akcijas






Tavs 1etaupijuns

Maksajumu karte
Apnakaa
BEZKONTAKTA KARTE
VISA BEZKONTAKTA

BANKAS KVITS NR 123456
TERMINALA ID 12345678
TIRGOPAJA ID 1234567
LALKS 2020-01-13 12 59 58`,
		},
		{
			name: "discounts immediately after products",
			content: `RimivV
Katra diena arvien labaka

SIA RIME LATVIA
Jur. adrese: Riga, A. Deglava iela 161
Rimi Super Agenskalns (Riga)

Kase Nr. 35

PVN makeataja nunurs: LVv40001234567
Sasijas nymurs: SP-LVO0123
Ceks —
Elektroniska izdruka
OOOCCCOOOOGIOKES 16







` + standardProductPart + `
ATLALDES

Tamantota Mans Rimi nauda -1,31
Gites akes jas 27138
Tavs 1etaupijuns 8,59



Makeajumu karte
Apnaksa
BEZKONTAKTA KARTE
VISA BEZKONTAKTA

BBANKAS KVITS NR 123456
TERMINALA ID 12345678
TIRGOPAJA ID 1234567
LALKS 2020-01-13 12 59 58`,
		},
	}

	parser := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := parser.ParsePurchases(tt.content)
			require.NoError(t, err)
			require.Len(t, blocks, len(expectedBlocks))
			for i, block := range blocks {
				assert.Equal(t, expectedBlocks[i], block.Lines, "block %d", i)
			}
		})
	}
}

func TestParsePurchases_MissingEndMarker(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParsePurchases("Rimi\n\n\n\n\n\nMilk\n1 gab X 1,00 EUR 1,00")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end of purchases")
}

func TestParsePurchases_LinesWithoutCurrencyMarker(t *testing.T) {
	parser := NewParser()

	content := "Rimi\n\n\n\n\n\nMilk\n1 gab X 1,00 EUR 1,00\nTrailing line without price\nATLAIDES"
	_, err := parser.ParsePurchases(content)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no currency marker")
}

func TestParsePurchases_RepairsKnownArtifacts(t *testing.T) {
	parser := NewParser()

	content := "Rimi\n\n\n\n\n\nTostermaize franéu 450g\n1 gab x 2,55 EUR 2,55 8\nATLAIDES"
	blocks, err := parser.ParsePurchases(content)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, []string{"Tostermaize franēu 450g", "1 gab x 2,55 EUR 2,55 8"}, blocks[0].Lines)
}
