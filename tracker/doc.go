/*
Package tracker contains the data model for the Ligature tracker and
arrangement editors.

The tracker package defines the Model struct, which holds the whole editor
state. The text buffer of the Ligature document is the single source of truth:
the parsed track, the lint diagnostics, the tracker grid columns and the
arrangement cells are all derived from it and recomputed whenever it changes.

The GUI does not modify the Model data directly. Rather, there are types
Action, Bool, Int and String which can be used to manipulate the model in a
controlled way. For example, model.Arrangement().AddSection() returns an Action
to append a new playlist row, which can be executed with
model.Arrangement().AddSection().Do().

Every structural edit works on a copy of the last successfully parsed track:
the copy is mutated, serialized back to text and the text is set as the new
buffer, which is parsed again. If the text cannot be parsed, the last good
track stays on display, the diagnostics describe the problem and structural
edits are disabled until the text is fixed.

The various Actions and other data manipulation methods are grouped based on
their functionalities. For example, model.Arrangement() groups all the ways to
manipulate the playlist, model.Grid() the ways to view the tracker grid and
model.Editor() the ways to edit the events of the grid.
*/
package tracker
