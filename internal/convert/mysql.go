package convert

// MySQL returns the converter table for MySQL data_type names.
func MySQL() *Registry {
	pt := func(name string) ParamType { return ParamType{Name: name} }

	return NewRegistry("mysql", map[string]Entry{
		"tinyint":    {ParamType: pt("tinyint"), Converter: intConverter(8)},
		"smallint":   {ParamType: pt("smallint"), Converter: intConverter(16)},
		"mediumint":  {ParamType: pt("mediumint"), Converter: intConverter(32)},
		"int":        {ParamType: pt("int"), Converter: intConverter(32)},
		"bigint":     {ParamType: pt("bigint"), Converter: intConverter(64)},
		"decimal":    {ParamType: pt("decimal"), Converter: decimalTextConverter},
		"float":      {ParamType: pt("float"), Converter: float32Converter},
		"double":     {ParamType: pt("double"), Converter: float64Converter},
		"date":       {ParamType: pt("date"), Converter: timeConverter},
		"datetime":   {ParamType: pt("datetime"), Converter: timeConverter},
		"timestamp":  {ParamType: pt("timestamp"), Converter: timeConverter},
		"char":       {ParamType: pt("char"), Converter: stringConverter, Sized: true},
		"varchar":    {ParamType: pt("varchar"), Converter: stringConverter, Sized: true},
		"tinytext":   {ParamType: pt("tinytext"), Converter: stringConverter, Sized: true},
		"text":       {ParamType: pt("text"), Converter: stringConverter, Sized: true},
		"mediumtext": {ParamType: pt("mediumtext"), Converter: stringConverter, Sized: true},
		"longtext":   {ParamType: pt("longtext"), Converter: stringConverter, Sized: true},
		"json":       {ParamType: pt("json"), Converter: stringConverter, Sized: true},
		"binary":     {ParamType: pt("binary"), Converter: bytesConverter, Sized: true},
		"varbinary":  {ParamType: pt("varbinary"), Converter: bytesConverter, Sized: true},
		"blob":       {ParamType: pt("blob"), Converter: bytesConverter, Sized: true},
		"longblob":   {ParamType: pt("longblob"), Converter: bytesConverter, Sized: true},
	})
}
