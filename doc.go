// Package srcview renders Java sources as hyperlinked artifacts: for each
// compilation unit it writes a compact script of call records describing
// every declaration and reference in the unit, styled by symbol kind and
// linked to the page that declares the target.
//
// # Pipeline
//
// An [Engine] renders a set of units in four phases:
//
//  1. Parse: each unit is parsed with tree-sitter.
//  2. Declare and link: every unit's types and members are entered into one
//     universe, then signatures are resolved, so references may cross units.
//  3. Index: each declaration is named by an anchor and recorded in a SQLite
//     index, which maps anchors back to the unit that declares them.
//  4. Render: occurrences are bound to symbols, turned into markers and
//     encoded with the unit's interned type and callable tables.
//
// A project descriptor listing the rendered units by package is written
// next to the artifacts.
//
// # Usage
//
//	e, err := srcview.New("", srcview.WithPretty(true))
//	if err != nil { ... }
//	defer e.Close()
//
//	report, err := e.RenderDirectory(ctx, "path/to/src", "out")
//
// Each unit "com/acme/A.java" produces "out/com/acme/A.java.js":
//
//	typeTable([["A","cl"]]);
//	methodTable([[0,"m",[],"st me"]]);
//	markers([[6,7,"#A","d cl","A",""],[28,29,"#A~m()","r st me","",""]]);
//
// # Anchors
//
// Declarations are addressed by anchor. By default types use their
// qualified name, members "Owner~name" and callables add their erased
// parameters. [WithLinkScript] replaces the default with a Risor script
// that receives the symbol and returns its anchor; see the internal/links
// package for the globals a script sees.
//
// # Query API
//
// The [QueryBuilder] returned by [Engine.Query] lists indexed units, their
// declarations, and where an anchor is rendered.
package srcview
