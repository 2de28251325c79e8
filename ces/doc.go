// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package ces builds the cause-effect structure of a system: the set of
concepts, one per irreducible mechanism, each carrying the mechanism's
integrated information together with its maximally irreducible cause
and effect repertoires.  The Structure aggregates the concepts and
supports queries (significance filters, size bands, the core complex),
qualia statistics, structure-to-structure comparison, and export to an
etable.Table.
*/
package ces
