// Package patterns holds the static regular-expression tables that drive
// message classification: evidence groups (error/retry/correction/discovery)
// and the intent/domain label tables. The tables are data, not code: the
// scoring algorithms in pkg/classify never special-case individual patterns.
package patterns

import "regexp"

// Intent labels assigned by scoring. Startup and Continuation are assigned
// only by the first-message special cases in pkg/classify, never by scoring.
const (
	IntentExecution    = "execution"
	IntentPlanning     = "planning"
	IntentDebug        = "debug"
	IntentConfig       = "config"
	IntentResearch     = "research"
	IntentReview       = "review"
	IntentStartup      = "startup"
	IntentContinuation = "continuation"
	IntentUnknown      = "unknown"
)

// DomainGeneral is the fallback when no domain scores above zero.
const DomainGeneral = "general"

// LabelPatterns pairs a classification label with its pattern list.
// Slice order is the tie-break order for argmax scoring.
type LabelPatterns struct {
	Label    string
	Patterns []*regexp.Regexp
}

// Library is the immutable pattern configuration, built once at process
// start and passed by reference. Never mutated after construction.
type Library struct {
	Error      []*regexp.Regexp
	Retry      []*regexp.Regexp
	Correction []*regexp.Regexp
	Discovery  []*regexp.Regexp
	Intents    []LabelPatterns
	Domains    []LabelPatterns
}

// compile builds a case-insensitive pattern list. The tables are fixed, so
// a bad pattern is a programming error and panics at startup.
func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile("(?i)" + e)
	}
	return out
}

// Default returns the standard pattern library.
func Default() *Library {
	return &Library{
		Error: compile(
			`error[:\s]`,
			`failed`,
			`failure`,
			`not found`,
			`doesn't exist`,
			`invalid`,
			`cannot\b`,
			`unable to`,
		),
		Retry: compile(
			`let me try`,
			`let me check`,
			`let me fix`,
			`let me look`,
			`that didn't work`,
			`try a different`,
			`try another`,
			`instead,?\s+(let|i'll)`,
			`actually,?\s+(the|let|i)`,
			`the issue is`,
			`the problem is`,
			`i see the issue`,
		),
		Correction: compile(
			`^no[,.\s]`,
			`^wrong`,
			`^that's wrong`,
			`^actually[,\s]`,
			`you can't`,
			`that's not`,
			`that won't work`,
			`that doesn't`,
			`not what i`,
			`i said\b`,
			`i meant\b`,
		),
		Discovery: compile(
			`i see[\s!]`,
			`i found`,
			`the (issue|problem|root cause|reason) (is|was)`,
			`now i understand`,
			`that's because`,
			`the fix is`,
			`resolved`,
			`working now`,
			`successfully`,
		),
		Intents: []LabelPatterns{
			{IntentExecution, compile(
				`implement`,
				`\bbuild\b`,
				`\bdeploy\b`,
				`\bfix\b`,
				`\bcreate\b`,
				`\bupdate\b`,
				`\badd\b`,
				`\bmodify\b`,
				`\brefactor\b`,
				`\bmigrate\b`,
				`resume work`,
				`continue.*work`,
				`executing.?plan`,
				`execute.?plan`,
				`subagent.driven`,
				`<command-message>fix</command-message>`,
			)},
			{IntentPlanning, compile(
				`\bplan\b`,
				`brainstorm`,
				`discuss`,
				`what if`,
				`how should`,
				`let's think`,
				`strategy`,
				`approach`,
				`writing.?plan`,
				`<command-message>superpowers:brainstorm`,
				`<command-message>superpowers:writing`,
			)},
			{IntentDebug, compile(
				`not working`,
				`broken`,
				`failing`,
				`\berror\b`,
				`bug`,
				`crash`,
				`stuck`,
				`still failing`,
				`why (is|does|isn)`,
				`<command-message>fix`,
			)},
			{IntentConfig, compile(
				`\bconnect\b`,
				`\binstall\b`,
				`\bconfigure\b`,
				`set.?up`,
				`api.?key`,
				`auth`,
				`credential`,
				`mcp`,
				`\.env\b`,
				`salesforce-connect`,
			)},
			{IntentResearch, compile(
				`research`,
				`figure out`,
				`how does`,
				`what is`,
				`investigate`,
				`explore`,
				`look into`,
				`can we use`,
				`understand`,
			)},
			// The filename appears twice in the source table (different
			// cases); both entries count toward the presence score, so the
			// duplicate stays.
			{IntentReview, compile(
				`\breview\b`,
				`look at`,
				`check.*status`,
				`what.*(state|progress)`,
				`where.*left off`,
				`audit`,
				`claude\.md`,
				`claude\.md`,
			)},
		},
		Domains: []LabelPatterns{
			{"ui/design", compile(
				`\bcomponent\b`, `\bpage\b`, `\bcss\b`, `\blayout\b`, `\bflexipage\b`,
				`\blwc\b`, `\breact\b`, `\bhtml\b`, `\bmodal\b`, `\bbutton\b`,
				`\bstyle\b`, `\btheme\b`, `\brender\b`, `\bfrontend\b`, `\bui\b`,
				`\btailwind\b`, `\bdesign\b`, `\bresponsive\b`, `\bnavigation\b`,
				`\bsidebar\b`, `\bheader\b`, `\btab\b`, `\bcard\b`, `\bicon\b`,
				`\bcolor\b`, `\bfont\b`, `\bgrid\b`, `\bflex\b`, `\bpadding\b`,
				`\bmargin\b`, `\bwidth\b`, `\bheight\b`, `\btsx\b`, `\bjsx\b`,
				`\bvite\b`, `\bhmr\b`, `\bscreenshot\b`, `\bvisual\b`,
			)},
			{"data", compile(
				`\bsoql\b`, `\bsql\b`, `\bdatabase\b`, `\bmigrat\w*\b`, `\bschema\b`,
				`\brecord\b`, `\bquery\b`, `\.db\b`, `\bdml\b`, `\btable\b`,
				`\bcolumn\b`, `\bfield\b`, `\bsqlite\b`, `\binsert\b`, `\bselect\b`,
				`\bjoin\b`, `\bindex\b`, `\bcrud\b`, `\bdata\s?source\b`,
				`\bsync\b`, `\bingest\b`, `\betl\b`, `\bjson\b`, `\bcsv\b`,
				`\bparse\b`, `\bscrape\b`, `\bfetch\b`,
			)},
			{"workflow/automation", compile(
				`\bflow\b`, `\btrigger\b`, `\bprocess\b`, `\bautomati\w*\b`,
				`\bcron\b`, `\bschedul\w*\b`, `\bemail\s?trigger\b`, `\bworkflow\b`,
				`\brule\b`, `\baction\b`, `\bprompt\b`, `\bscreen\s?flow\b`,
				`\brecord.?trigger\b`, `\bvalidation\b`, `\bapproval\b`,
				`\bnotif\w*\b`, `\balert\b`, `\bhook\b`, `\bwebhook\b`,
			)},
			// \bpattern\b is listed twice upstream; occurrence scoring counts
			// it double, which the argmax depends on. Left as-is.
			{"architecture", compile(
				`\brefactor\b`, `\bmodule\b`, `\bpattern\b`, `\bstructure\b`,
				`\bdirectory\b`, `\bextract\b`, `\babstract\w*\b`, `\borganiz\w*\b`,
				`\barchitect\w*\b`, `\bseparati\w*\b`, `\bdecouple\b`, `\blayer\b`,
				`\bplugin\b`, `\bsystem\b`, `\bframework\b`, `\bpattern\b`,
			)},
			{"api", compile(
				`\bendpoint\b`, `\bapi\b`, `\brest\b`, `\broute\b`, `\brequest\b`,
				`\bresponse\b`, `\bintegration\b`, `\bhttp\b`, `\bfetch\b`,
				`\bpost\b`, `\bget\b`, `\bput\b`, `\bwebsocket\b`, `\boauth\b`,
				`\btoken\b`, `\bauth\w*\b`,
			)},
			{"infra/deploy", compile(
				`\bdeploy\b`, `\bci\b`, `\bbuild\b`, `\bpackage\b`, `\bmanifest\b`,
				`\bsandbox\b`, `\bproduction\b`, `\bgit\b`, `\bbranch\b`,
				`\bmerge\b`, `\bcommit\b`, `\brelease\b`, `\bpipeline\b`,
				`\bdocker\b`, `\bserver\b`, `\bhost\b`, `\binstall\b`,
			)},
			{"config/auth", compile(
				`\boauth\b`, `\btoken\b`, `\bapi.?key\b`, `\bcredential\b`,
				`\bmcp\b`, `\benv\b`, `\bsettings\b`, `\bconfig\w*\b`,
				`\bonboard\b`, `\bsetup\b`, `\bpermission\b`, `\baccess\b`,
			)},
			{"metadata", compile(
				`\bdescri\w+\b`, `\blabel\b`, `\bhelp.?text\b`, `\benrich\b`,
				`\bdocument\b`, `\bannotat\w*\b`, `\bobject.?manager\b`,
			)},
			{"test/qa", compile(
				`\btest\b`, `\bcoverage\b`, `\bassert\b`, `\bvalidat\w*\b`,
				`\bverif\w*\b`, `\bqa\b`, `\bregression\b`, `\bsanity\b`,
				`\bapex\s?test\b`, `\bedge\s?case\b`,
			)},
		},
	}
}

// MatchesAny reports whether any pattern in the group matches text.
func MatchesAny(text string, group []*regexp.Regexp) bool {
	for _, p := range group {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// PresenceScore counts how many patterns in the list match text at least
// once. Used for intent scoring, where a label's weight is the breadth of
// matching patterns rather than raw repetition.
func PresenceScore(text string, group []*regexp.Regexp) int {
	score := 0
	for _, p := range group {
		if p.MatchString(text) {
			score++
		}
	}
	return score
}

// OccurrenceScore counts total pattern occurrences in text across the list.
// Used for domain scoring, where repetition across a whole session matters.
func OccurrenceScore(text string, group []*regexp.Regexp) int {
	score := 0
	for _, p := range group {
		score += len(p.FindAllString(text, -1))
	}
	return score
}
