package freq

// Aggregate loads every clade file and merges them into one table. Loci enter
// the table in the order they are first seen across the inputs, which fixes
// the iteration order for everything downstream. When two inputs share a
// clade name, the later file's records overwrite the earlier ones per locus.
func Aggregate(inputs []CladeInput) (*Table, error) {
	table := NewTable()

	for _, in := range inputs {
		records, order, err := LoadCladeFile(in.Path, in.NIndv)
		if err != nil {
			return nil, err
		}

		clade := in.CladeName()
		for _, locus := range order {
			table.Set(locus, clade, records[locus])
		}
	}

	return table, nil
}
