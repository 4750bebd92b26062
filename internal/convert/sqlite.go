package convert

// SQLite returns the converter table for common SQLite declared types.
// SQLite stores by affinity, so the table covers the usual spellings.
func SQLite() *Registry {
	pt := func(name string) ParamType { return ParamType{Name: name} }
	integer := Entry{ParamType: pt("INTEGER"), Converter: intConverter(64)}
	float := Entry{ParamType: pt("REAL"), Converter: float64Converter}
	text := Entry{ParamType: pt("TEXT"), Converter: stringConverter, Sized: true}
	blob := Entry{ParamType: pt("BLOB"), Converter: bytesConverter, Sized: true}

	return NewRegistry("sqlite", map[string]Entry{
		"integer":   integer,
		"int":       integer,
		"bigint":    integer,
		"smallint":  {ParamType: pt("INTEGER"), Converter: intConverter(16)},
		"boolean":   {ParamType: pt("INTEGER"), Converter: boolConverter},
		"real":      float,
		"double":    float,
		"float":     float,
		"numeric":   {ParamType: pt("NUMERIC"), Converter: decimalTextConverter},
		"decimal":   {ParamType: pt("NUMERIC"), Converter: decimalTextConverter},
		"text":      text,
		"varchar":   text,
		"char":      text,
		"clob":      text,
		"uuid":      {ParamType: pt("TEXT"), Converter: uuidTextConverter},
		"datetime":  {ParamType: pt("TEXT"), Converter: timeConverter},
		"timestamp": {ParamType: pt("TEXT"), Converter: timeConverter},
		"blob":      blob,
	})
}
