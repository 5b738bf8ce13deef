// internal/words/parse.go
//
// Parsers for the two word list formats.
//
// Target list:
//   CSV-ish text, one word per line; only the first comma-separated column is read
//   (frequency columns are ignored). The line index is the word's rank, so the
//   file must be sorted most-common first. A "WORD" header line is skipped.
//
// Eligibility (a word may gate a round only if it is common enough):
//   • 3 letters: must be in the safe triplet list.
//   • 4 letters: rank ≤ 2000.
//   • 5+ letters: rank ≤ 5000.
//
// Dictionary:
//   One word per line. Anything that is not an A–Z word of 3+ letters is dropped.

package words

import (
	"bufio"
	"io"
	"strings"
)

const (
	fourLetterRankLimit = 2000
	longWordRankLimit   = 5000
)

// ParseTargets reads a ranked target list.
func ParseTargets(r io.Reader) ([]TargetEntry, error) {
	var out []TargetEntry
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		rank := line
		line++
		col := sc.Text()
		if i := strings.IndexByte(col, ','); i >= 0 {
			col = col[:i]
		}
		w := Normalize(col)
		if w == "" || w == "WORD" || !IsWord(w) {
			continue
		}
		out = append(out, TargetEntry{Word: w, Rank: rank, Eligible: eligible(w, rank)})
	}
	return out, sc.Err()
}

// ParseDictionary reads a flat word list.
func ParseDictionary(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := Normalize(sc.Text())
		if IsWord(w) {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

// eligible applies the commonness rules for a word at the given rank.
func eligible(w string, rank int) bool {
	switch {
	case len(w) == 3:
		_, ok := safeTriplets[w]
		return ok
	case len(w) == 4:
		return rank <= fourLetterRankLimit
	default:
		return rank <= longWordRankLimit
	}
}

// safeTriplets are the three-letter words common enough to be targets.
var safeTriplets = toSet(strings.Fields(`
ACT ADD AGE AGO AID AIM AIR ALL AND ANY APE APT ARC ARE ARM ART ASH ASK ATE AWE AXE
BAD BAG BAN BAR BAT BAY BED BEE BEG BET BIB BID BIG BIN BIT BOA BOB BOG BOO BOW BOX BOY BRA BUD BUG BUN BUS BUT BUY BYE
CAB CAD CAM CAN CAP CAR CAT COD COG CON COP COT COW COY CRY CUB CUE CUP CUT
DAB DAD DAM DAY DEN DEW DID DIE DIG DIM DIN DIP DOG DON DOT DRY DUB DUO DYE
EAR EAT EGG EGO ELF ELK ELM END ERA EVE EYE
FAN FAR FAT FED FEE FEW FIB FIG FIN FIT FIX FLU FLY FOB FOG FOR FOX FRY FUN FUR
GAG GAP GAS GEL GEM GET GIG GIN GOD GOT GUM GUN GUT GUY GYM
HAD HAM HAS HAT HAY HEM HEN HER HEY HID HIM HIP HIT HOG HOP HOT HOW HUB HUG HUM HUT
ICE ICY ILL INK INN ION IRE ITS IVY
JAM JAR JAW JAY JET JIG JOB JOG JOY JUG
KEY KID KIN KIT
LAB LAD LAG LAP LAW LAY LED LEG LET LID LIE LIP LIT LOG LOT LOW
MAD MAN MAP MAT MAY MEN MET MID MIX MOB MOM MOP MUD MUG MUM
NAB NAG NAP NET NEW NIL NIP NOD NOR NOT NOW NUT
OAK OAR ODD OFF OIL OLD ONE ORB OUR OUT OWL OWN
PAD PAL PAN PAR PAT PAW PAY PEA PEG PEN PET PIE PIG PIN PIT PLY POD POP POT PRO PRY PUB PUN PUP PUT
RAG RAM RAN RAP RAT RAW RAY RED RIB RID RIG RIM RIP ROB ROD ROT ROW RUB RUG RUN RUT
SAD SAG SAW SAY SEA SEE SET SEW SEX SHE SHY SIN SIP SIR SIT SIX SKI SKY SLY SOB SOD SON SOW SOY SPA SPY SUM SUN
TAB TAG TAN TAP TAR TEA TEN THE TIE TIN TIP TOE TON TOP TOW TOY TRY TUB TUG TWO
URN USE
VAN VAT VET VIA VIE VIP VOW
WAG WAR WAX WAY WEB WED WET WHO WHY WIG WIN WIT WOE WON WOW
YAK YAM YES YET YOU
ZAP ZIP ZOO
`))

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}
