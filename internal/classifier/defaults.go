package classifier

// DefaultTableVersion identifies the built-in pattern table. Bump it whenever
// a pattern changes so stored results can be traced to the table that
// produced them.
const DefaultTableVersion = "2026.10.2"

var defaultTableFile = TableFile{
	Version: DefaultTableVersion,
	Rules: []RuleFile{
		{
			Category: OptOut,
			Reason:   "compliance withdrawal requested",
			Base:     95, Step: 2, Cap: 99,
			Signals: []SignalFile{
				{Name: "stop_request", Patterns: []string{
					`\bstop\b`,
					`\bquit (texting|messaging|contacting)\b`,
					`\bcease\b`,
				}},
				{Name: "unsubscribe", Patterns: []string{
					`\bunsubscribe\b`,
					`\bopt(-| )?out\b`,
				}},
				{Name: "list_removal", Patterns: []string{
					`\bremove me\b`,
					`^(please )?remove\W*$`,
					`\bremove (my|this) (number|phone)\b`,
					`\bremove\b.*\blist\b`,
					`\btake (me|us|my number)\b.*\boff\b`,
					`\b(lose|delete) (this|my) number\b`,
				}},
				{Name: "do_not_contact", Patterns: []string{
					`\b(don't|dont|do not|never) (ever )?(text|contact|call|message|msg|reach out)\b`,
					`\bleave me alone\b`,
				}},
				{Name: "legal", Patterns: []string{
					`\bharass(ment|ing)?\b`,
					`\billegal\b`,
					`\b(attorney|lawyer|lawsuit|sue you)\b`,
					`\breport(ing)? (you|this)\b`,
					`\bdo not call (list|registry)\b`,
					`\b(tcpa|fcc)\b`,
				}},
			},
		},
		{
			Category: Hot,
			Reason:   "direct transactional intent",
			Base:     60, Step: 15, Cap: 98,
			Signals: []SignalFile{
				{Name: "offer_request", Patterns: []string{
					`\bmake (me |us )?(an? )?offer\b`,
					`\bwhat('s| is| would be) (your|the) offer\b`,
					`\bsend (me |us )?(an? )?offer\b`,
					`\b(cash|best) offer\b`,
					`\bwhat (would|will|can) you (offer|pay|give)\b`,
				}},
				{Name: "price_question", Patterns: []string{
					`\bhow much\b`,
					`\basking price\b`,
					`\bwhat('s| is) (the |your )?price\b`,
					`\bprice range\b`,
					`\$\s?\d`,
					`\b\d+(\.\d+)?\s?(k|million|mil)\b`,
				}},
				{Name: "affirmative", Patterns: []string{
					`^(yes|yeah|yep|yup|sure|absolutely|definitely)\b`,
					`\binterested\b`,
					`\b(i am|i'm|im|we are|we're)( very| really| definitely)? interested\b`,
					`\bopen to (offers|selling|it)\b`,
					`\b(ready|want|looking) to sell\b`,
				}, Unless: []string{
					`\b(not|no longer|never)( \w+)? interested\b`,
					`\b(not|never|don't|dont|do not)( \w+)? (ready|want|looking) to sell\b`,
				}},
				{Name: "callback", Patterns: []string{
					`\bcall me\b`,
					`\bgive me a call\b`,
					`\bwhen can (we|you|i)\b`,
					`\blet'?s talk\b`,
					`\bcan we talk\b`,
					`\bcall (me )?(back|anytime|tomorrow|today)\b`,
					`\bmy (cell|number) is\b`,
				}},
			},
		},
		{
			Category: Warm,
			Reason:   "conditional interest",
			Base:     55, Step: 10, Cap: 90,
			Signals: []SignalFile{
				{Name: "hedge", Patterns: []string{
					`\bmaybe\b`,
					`\bpossibly\b`,
					`\bperhaps\b`,
					`\bmight\b`,
					`\bnot sure\b`,
					`\bpotentially\b`,
				}},
				{Name: "considering", Patterns: []string{
					`\bthinking about\b`,
					`\bconsider(ing)?\b`,
					`\bdepends\b`,
					`\bright price\b`,
					`\bfor the right\b`,
				}},
				{Name: "consult", Patterns: []string{
					`\b(talk|check|discuss|ask|run it by)\b.*\b(husband|wife|spouse|partner|family|brother|sister|son|daughter|kids)\b`,
					`\b(talk|discuss|check) (it )?(over )?with\b`,
					`\bask my\b`,
				}},
				{Name: "info_request", Patterns: []string{
					`\bwhat do you mean\b`,
					`\btell me more\b`,
					`\bmore info(rmation)?\b`,
					`\bwho is this\b`,
					`\bwhat company\b`,
					`\bhow did you get (my|this) (number|info)\b`,
				}},
				{Name: "timing", Patterns: []string{
					`\blater\b`,
					`\bnext (year|month|spring|summer|fall|winter)\b`,
					`\bin a (few|couple) (of )?(months|years)\b`,
					`\bnot (right )?now\b`,
					`\bdown the road\b`,
					`\bsomeday\b`,
				}},
			},
		},
		{
			Category: Cold,
			Reason:   "explicit disinterest",
			Base:     60, Step: 10, Cap: 90,
			Signals: []SignalFile{
				{Name: "disinterest", Patterns: []string{
					`\b(not|no longer)( \w+)? interested\b`,
					`\bno interest\b`,
					`\bno,? thanks?\b`,
					`\bno thank you\b`,
					`\bnot (really )?looking\b`,
					`\b(don't|dont|do not)( \w+)? want to sell\b`,
					`\bnot selling\b`,
					`^(no|nope|nah)\W*$`,
				}},
				{Name: "not_for_sale", Patterns: []string{
					`\bnot for sale\b`,
					`\bnever (intend(ed)? to )?sell\b`,
					`\bnot on the market\b`,
				}},
				{Name: "wrong_party", Patterns: []string{
					`\bwrong (number|person)\b`,
					`\b(don't|dont|do not|no longer) own\b`,
					`\bnot the owner\b`,
				}},
				{Name: "already_transacted", Patterns: []string{
					`\bsold\b`,
					`\bunder contract\b`,
					`\blisted with\b`,
					`\b(have|got) an agent\b`,
					`\bpending sale\b`,
				}},
				{Name: "apologetic", Patterns: []string{
					`\bsorry\b`,
				}},
			},
		},
	},
}

var defaultTable = mustCompile(defaultTableFile)

// DefaultTable returns the built-in pattern table. The returned table is
// shared and must not be modified.
func DefaultTable() *Table {
	return defaultTable
}

func mustCompile(f TableFile) *Table {
	t, err := f.Compile()
	if err != nil {
		panic("classifier: built-in table: " + err.Error())
	}
	return t
}
