package models

// Clone returns a copy of t that shares no slices or maps with it.
func (t *CarrierRateTemplate) Clone() *CarrierRateTemplate {
	if t == nil {
		return nil
	}
	c := *t

	if t.CSVStructure.HasHeaders != nil {
		v := *t.CSVStructure.HasHeaders
		c.CSVStructure.HasHeaders = &v
	}
	c.CSVStructure.ExpectedColumns = cloneStrings(t.CSVStructure.ExpectedColumns)
	c.CSVStructure.RequiredColumns = cloneStrings(t.CSVStructure.RequiredColumns)

	if t.FieldMappings.CustomFields != nil {
		c.FieldMappings.CustomFields = make(map[string]string, len(t.FieldMappings.CustomFields))
		for k, v := range t.FieldMappings.CustomFields {
			c.FieldMappings.CustomFields[k] = v
		}
	}

	if t.ValidationRules.RequiredFields != nil {
		c.ValidationRules.RequiredFields = append([]Field{}, t.ValidationRules.RequiredFields...)
	}
	if t.ValidationRules.NumericFields != nil {
		c.ValidationRules.NumericFields = append([]Field{}, t.ValidationRules.NumericFields...)
	}
	if t.ValidationRules.Ranges != nil {
		c.ValidationRules.Ranges = make(map[Field]NumericRange, len(t.ValidationRules.Ranges))
		for k, v := range t.ValidationRules.Ranges {
			c.ValidationRules.Ranges[k] = v
		}
	}

	if t.SampleData != nil {
		c.SampleData = make([][]string, len(t.SampleData))
		for i, row := range t.SampleData {
			c.SampleData[i] = cloneStrings(row)
		}
	}
	if t.Usage.LastUsedAt != nil {
		v := *t.Usage.LastUsedAt
		c.Usage.LastUsedAt = &v
	}
	return &c
}

// Clone returns a copy of c with its own record slice.
func (c *RateCard) Clone() *RateCard {
	if c == nil {
		return nil
	}
	out := *c
	if c.Records != nil {
		out.Records = append([]RateRecord{}, c.Records...)
	}
	return &out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
