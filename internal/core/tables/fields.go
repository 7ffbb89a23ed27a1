package tables

import "github.com/JonMunkholm/moviesync/internal/core"

var idField = core.FieldSpec{Column: "id", Type: core.FieldUUID}

// timestampFields maps the source created_at/updated_at pair onto
// created/modified.
var timestampFields = []core.FieldSpec{
	{Column: "created", SourceColumn: "created_at", Type: core.FieldTimestamp},
	{Column: "modified", SourceColumn: "updated_at", Type: core.FieldTimestamp},
}

var createdField = core.FieldSpec{Column: "created", SourceColumn: "created_at", Type: core.FieldTimestamp}

// specs joins field spec groups in column order.
func specs(groups ...[]core.FieldSpec) []core.FieldSpec {
	var out []core.FieldSpec
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func timestamps(f core.Fields) core.Timestamps {
	return core.Timestamps{
		Created:  f.Timestamp("created"),
		Modified: f.Timestamp("modified"),
	}
}

func createdStamp(f core.Fields) core.CreatedStamp {
	return core.CreatedStamp{Created: f.Timestamp("created")}
}
