// Package match provides the records parsed from the referee assignment portal.
//
// A Match is one scheduled game with its officiating team, a Referee is one
// person's assignment to a role in that team. The package also owns the rules
// for turning the portal's loosely structured table cells into those records:
// the multi-line cell tokenizer, the status icon decoder and the team cell
// parser that infers unfilled slots from adjacent role tokens.
//
// Records are grouped per queried referee or per calendar day. The by-day view
// deduplicates records that several queried referees share.
package match
