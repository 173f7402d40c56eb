package engine

import (
	"github.com/shaiso/supercon/internal/domain"
	"github.com/shaiso/supercon/internal/namelist"
)

// Соглашения об именах файлов между стадиями.
const (
	RelaxPrefix  = "RELAX"
	SCFPrefix    = "QE"
	OutDir       = "./"
	FilDyn       = "QE.dyn"
	FilDVSCF     = "dvscf"
	FlFrc        = "QE333.fc"
	FlFrq        = "QE333.freq"
	FlDos        = "phonon.dos"
	CouplingFile = "lambda"
)

// Каждая стадия получает свой Config из отдельного конструктора:
// шаблоны не разделяются и не мутируются между стадиями.

// BuildRelaxConfig строит конфигурацию pw.x для релаксации.
//
// press в &cell присутствует тогда и только тогда, когда pressure задано.
// Допустимые типы pressure: nil, *float64, float64, float32, int, int64,
// json.Number. Остальные типы дают *ConfigError.
func BuildRelaxConfig(p Params, pressure any) (namelist.Config, error) {
	press, hasPress, err := pressureValue(pressure)
	if err != nil {
		return namelist.Config{}, err
	}

	cfg := namelist.New(
		namelist.S("control",
			namelist.E("calculation", namelist.String(p.RelaxMode)),
			namelist.E("restart_mode", namelist.String("from_scratch")),
			namelist.E("prefix", namelist.String(RelaxPrefix)),
			namelist.E("outdir", namelist.String(OutDir)),
			namelist.E("tstress", namelist.Bool(true)),
			namelist.E("tprnfor", namelist.Bool(true)),
			namelist.E("disk_io", namelist.String("low")),
			namelist.E("wf_collect", namelist.Bool(true)),
			namelist.E("pseudo_dir", namelist.String(p.PseudoDir)),
			namelist.E("verbosity", namelist.String("high")),
			namelist.E("nstep", namelist.Int(100)),
		),
		namelist.S("system",
			namelist.E("ibrav", namelist.Int(0)),
			namelist.E("nat", namelist.Int(p.Structure.NumAtoms())),
			namelist.E("ntyp", namelist.Int(p.Structure.NumSpecies())),
			namelist.E("ecutwfc", namelist.Int(45)),
			namelist.E("ecutrho", namelist.Int(250)),
			namelist.E("q2sigma", namelist.Int(1)),
			namelist.E("ecfixed", namelist.Float(44.5)),
			namelist.E("qcutz", namelist.Int(800)),
			namelist.E("occupations", namelist.String("smearing")),
			namelist.E("degauss", namelist.Float(0.01)),
			namelist.E("lda_plus_u", namelist.Bool(false)),
		),
		namelist.S("electrons",
			namelist.E("diagonalization", namelist.String("david")),
			namelist.E("mixing_mode", namelist.String("local-TF")),
			namelist.E("mixing_beta", namelist.Float(0.3)),
			namelist.E("conv_thr", namelist.Literal("1d-9")),
		),
		namelist.S("ions",
			namelist.E("ion_dynamics", namelist.String("bfgs")),
		),
		namelist.S("cell",
			namelist.E("cell_dynamics", namelist.String("bfgs")),
			namelist.E("cell_dofree", namelist.String("all")),
		),
	)

	if hasPress {
		cfg = cfg.With("cell", "press", namelist.Float(press))
	}
	return cfg, nil
}

// BuildScfConfig строит конфигурацию pw.x для SCF на релаксированной структуре.
func BuildScfConfig(p Params) namelist.Config {
	return namelist.New(
		namelist.S("control",
			namelist.E("calculation", namelist.String("scf")),
			namelist.E("restart_mode", namelist.String("from_scratch")),
			namelist.E("prefix", namelist.String(SCFPrefix)),
			namelist.E("outdir", namelist.String(OutDir)),
			namelist.E("tstress", namelist.Bool(true)),
			namelist.E("tprnfor", namelist.Bool(true)),
			namelist.E("disk_io", namelist.String("low")),
			namelist.E("pseudo_dir", namelist.String(p.PseudoDir)),
			namelist.E("verbosity", namelist.String("high")),
			namelist.E("nstep", namelist.Int(100)),
			namelist.E("etot_conv_thr", namelist.Literal("1.0d-5")),
			namelist.E("forc_conv_thr", namelist.Literal("1.0d-4")),
		),
		namelist.S("system",
			namelist.E("ibrav", namelist.Int(0)),
			namelist.E("degauss", namelist.Float(0.01)),
			namelist.E("nat", namelist.Int(p.Structure.NumAtoms())),
			namelist.E("ntyp", namelist.Int(p.Structure.NumSpecies())),
			namelist.E("ecutwfc", namelist.Int(45)),
			namelist.E("ecutrho", namelist.Int(250)),
			namelist.E("occupations", namelist.String("smearing")),
			namelist.E("smearing", namelist.String("mp")),
			namelist.E("la2F", namelist.Bool(true)),
		),
		namelist.S("electrons",
			namelist.E("diagonalization", namelist.String("david")),
			namelist.E("mixing_mode", namelist.String("plain")),
			namelist.E("mixing_beta", namelist.Float(0.7)),
			namelist.E("conv_thr", namelist.Literal("1d-9")),
		),
	)
}

// BuildPhononConfig строит конфигурацию ph.x.
// nq1..nq3 — первая тройка q-сетки без преобразований.
func BuildPhononConfig(qpoints domain.KPoints) (namelist.Config, error) {
	q, ok := qpoints.First()
	if !ok {
		return namelist.Config{}, NewConfigError("inputph", "nq1", "q-point mesh is empty", ErrEmptyMesh)
	}

	return namelist.New(
		namelist.S("inputph",
			namelist.E("prefix", namelist.String(SCFPrefix)),
			namelist.E("fildyn", namelist.String(FilDyn)),
			namelist.E("outdir", namelist.String(OutDir)),
			namelist.E("ldisp", namelist.Bool(true)),
			namelist.E("trans", namelist.Bool(true)),
			namelist.E("fildvscf", namelist.String(FilDVSCF)),
			namelist.E("electron_phonon", namelist.String("interpolated")),
			namelist.E("el_ph_sigma", namelist.Float(0.005)),
			namelist.E("nq1", namelist.Int(q[0])),
			namelist.E("nq2", namelist.Int(q[1])),
			namelist.E("nq3", namelist.Int(q[2])),
			namelist.E("tr2_ph", namelist.Literal("1.0d-12")),
		),
	), nil
}

// BuildForceConstantConfig строит конфигурацию q2r.x.
func BuildForceConstantConfig() namelist.Config {
	return namelist.New(
		namelist.S("input",
			namelist.E("zasr", namelist.String("simple")),
			namelist.E("fildyn", namelist.String(FilDyn)),
			namelist.E("flfrc", namelist.String(FlFrc)),
			namelist.E("la2F", namelist.Bool(true)),
		),
	)
}

// BuildInterpolationConfig строит конфигурацию matdyn.x.
// nk1..nk3 — первая тройка k-сетки без преобразований.
func BuildInterpolationConfig(kpoints domain.KPoints) (namelist.Config, error) {
	k, ok := kpoints.First()
	if !ok {
		return namelist.Config{}, NewConfigError("input", "nk1", "k-point mesh is empty", ErrEmptyMesh)
	}

	return namelist.New(
		namelist.S("input",
			namelist.E("asr", namelist.String("simple")),
			namelist.E("flfrc", namelist.String(FlFrc)),
			namelist.E("flfrq", namelist.String(FlFrq)),
			namelist.E("la2F", namelist.Bool(true)),
			namelist.E("dos", namelist.Bool(true)),
			namelist.E("fldos", namelist.String(FlDos)),
			namelist.E("nk1", namelist.Int(k[0])),
			namelist.E("nk2", namelist.Int(k[1])),
			namelist.E("nk3", namelist.Int(k[2])),
			namelist.E("ndos", namelist.Int(50)),
		),
	), nil
}
