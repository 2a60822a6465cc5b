package omm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/suilend/steamm-ox/pkg/decimal"
)

func u256(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// D values below were generated from the Curve StableSwap contract.
var invariantCases = []struct {
	reserveA uint64
	reserveB uint64
	amp      uint64
	d        uint64
}{
	{1_000_000, 1_000_000, 20_000, 2_000_000},
	{646_604_101_554_903, 430_825_829_860_939, 10_000, 1_077_207_198_258_876},
	{208_391_493_399_283, 381_737_267_304_454, 6_000, 589_673_027_554_751},
	{357_533_698_368_810, 292_279_113_116_023, 200_000, 649_811_157_409_887},
	{640_219_149_077_469, 749_346_581_809_482, 6_000, 1_389_495_058_454_884},
	{796_587_650_933_232, 263_696_548_289_376, 20_000, 1_059_395_029_204_629},
	{645_814_702_742_123, 941_346_843_035_970, 6_000, 1_586_694_700_461_120},
	{36_731_011_531_180, 112_244_514_819_796, 6_000, 148_556_820_223_757},
	{638_355_455_638_005, 144_419_816_425_350, 20_000, 781_493_318_669_443},
	{747_070_395_683_716, 583_370_126_767_355, 200_000, 1_330_435_412_150_341},
	{222_152_880_197_132, 503_754_962_483_370, 10_000, 725_272_897_710_721},
}

func TestComputeD(t *testing.T) {
	for _, c := range invariantCases {
		d, err := ComputeD(u256(c.reserveA), u256(c.reserveB), u256(c.amp))
		require.NoError(t, err)
		require.Equal(t, u256(c.d), d, "reserves %d/%d amp %d", c.reserveA, c.reserveB, c.amp)
	}

	d, err := ComputeD(u256(30_000_000_000_000), u256(10_000_000_000_000), u256(200))
	require.NoError(t, err)
	require.Equal(t, u256(38_041_326_932_308), d)
}

// Scaling the reserves scales D linearly.
func TestComputeDScaled(t *testing.T) {
	upscale := uint256.NewInt(usdScale)
	for _, c := range invariantCases {
		a := new(uint256.Int).Mul(u256(c.reserveA), upscale)
		b := new(uint256.Int).Mul(u256(c.reserveB), upscale)
		d, err := ComputeD(a, b, u256(c.amp))
		require.NoError(t, err)
		d.Div(d, upscale)
		require.Equal(t, u256(c.d), d)
	}
}

func TestComputeDGuards(t *testing.T) {
	_, err := ComputeD(u256(0), u256(1_000_000), u256(20_000))
	require.ErrorIs(t, err, ErrZeroReserve)
	_, err = ComputeD(u256(1_000_000), u256(0), u256(20_000))
	require.ErrorIs(t, err, ErrZeroReserve)
	_, err = ComputeD(u256(1_000_000), u256(1_000_000), u256(99))
	require.ErrorIs(t, err, ErrInvalidAmplifier)
}

var counterpartCases = []struct {
	reserveIn uint64
	amp       uint64
	d         uint64
	y         uint64
}{
	{1_010_000, 20_000, 2_000_000, 990_000},
	{1_045_311_940_606_135, 10_000, 1_077_207_198_258_876, 54_125_279_774_978},
	{628_789_391_533_719, 6_000, 589_673_027_554_751, 12_102_396_904_252},
	{664_497_701_537_459, 200_000, 649_811_157_409_887, 1_571_656_363_072},
	{1_241_196_069_415_337, 6_000, 1_389_495_058_454_884, 164_151_111_358_319},
	{1_207_464_631_415_294, 20_000, 1_059_395_029_204_629, 3_978_315_032_067},
	{1_326_030_781_815_325, 6_000, 1_586_694_700_461_120, 270_631_769_558_978},
	{596_549_235_149_733, 6_000, 148_556_820_223_757, 25_485_695_510},
	{1_412_549_409_240_877, 20_000, 781_493_318_669_443, 333_436_412_241},
	{966_973_926_501_573, 200_000, 1_330_435_412_150_341, 363_547_559_872_801},
	{468_614_952_287_735, 10_000, 725_272_897_710_721, 256_991_438_480_111},
}

func TestComputeY(t *testing.T) {
	for _, c := range counterpartCases {
		y, err := ComputeY(u256(c.reserveIn), u256(c.amp), u256(c.d))
		require.NoError(t, err)
		require.Equal(t, u256(c.y), y, "reserveIn %d amp %d d %d", c.reserveIn, c.amp, c.d)
	}

	// simulated trade: sell 1000 usdc into a 3000 sui / 1000 usdc pool
	y, err := ComputeY(u256(10_000_000_000_000+100_000_000_000), u256(1*2*APrecision), u256(38_041_326_932_308))
	require.NoError(t, err)
	require.Equal(t, u256(29_845_303_826_098), y)

	// opposite direction
	y, err = ComputeY(u256(30_000_000_000_000+51_565_391_310), u256(1*2*APrecision), u256(38_041_326_932_308))
	require.NoError(t, err)
	require.Equal(t, u256(9_966_843_369_867), y)
}

// Scaling reserveIn and D scales Y linearly to within one unit.
func TestComputeYScaled(t *testing.T) {
	upscale := uint256.NewInt(usdScale)
	for _, c := range counterpartCases {
		in := new(uint256.Int).Mul(u256(c.reserveIn), upscale)
		d := new(uint256.Int).Mul(u256(c.d), upscale)
		y, err := ComputeY(in, u256(c.amp), d)
		require.NoError(t, err)
		y.Div(y, upscale)

		want := u256(c.y)
		var diff uint256.Int
		if y.Cmp(want) >= 0 {
			diff.Sub(y, want)
		} else {
			diff.Sub(want, y)
		}
		require.LessOrEqual(t, diff.Uint64(), uint64(1), "y %s want %s", y, want)
	}
}

func TestComputeYGuards(t *testing.T) {
	_, err := ComputeY(u256(0), u256(20_000), u256(2_000_000))
	require.ErrorIs(t, err, ErrZeroReserve)
	_, err = ComputeY(u256(1_010_000), u256(99), u256(2_000_000))
	require.ErrorIs(t, err, ErrInvalidAmplifier)
}

func TestSplitPrice(t *testing.T) {
	p, err := SplitPrice(decimal.FromUint64(3))
	require.NoError(t, err)
	require.Equal(t, u256(3), p.IntegerPart)
	require.Nil(t, p.InvertedFractionalPart)

	p, err = SplitPrice(decimal.MustParse("1.5"))
	require.NoError(t, err)
	require.Equal(t, u256(1), p.IntegerPart)
	require.Equal(t, u256(2), p.InvertedFractionalPart)

	p, err = SplitPrice(decimal.MustParse("0.5"))
	require.NoError(t, err)
	require.Equal(t, u256(0), p.IntegerPart)
	require.Equal(t, u256(2), p.InvertedFractionalPart)

	p, err = SplitPrice(decimal.MustParse("2.25"))
	require.NoError(t, err)
	require.Equal(t, u256(2), p.IntegerPart)
	require.Equal(t, u256(4), p.InvertedFractionalPart)

	// 1/0.1 is exact in WAD representation
	p, err = SplitPrice(decimal.MustParse("1.1"))
	require.NoError(t, err)
	require.Equal(t, u256(1), p.IntegerPart)
	require.Equal(t, u256(10), p.InvertedFractionalPart)
}

func TestUSDConversion(t *testing.T) {
	whole := SplitOraclePrice{IntegerPart: u256(3)}
	require.Equal(t, u256(300), ToUSD(u256(100), whole))
	require.Equal(t, u256(100), FromUSD(u256(300), whole))

	// price 1.5 splits into integer 1, inverted fraction 2
	mixed := SplitOraclePrice{IntegerPart: u256(1), InvertedFractionalPart: u256(2)}
	require.Equal(t, u256(150), ToUSD(u256(100), mixed))
	require.Equal(t, u256(100), FromUSD(u256(150), mixed))

	// round trip never overstates the inverse
	for _, amount := range []uint64{1, 7, 99, 12_345, 1_000_000_007} {
		for _, price := range []SplitOraclePrice{
			whole,
			mixed,
			{IntegerPart: u256(0), InvertedFractionalPart: u256(2)},
			{IntegerPart: u256(2), InvertedFractionalPart: u256(4)},
		} {
			back := FromUSD(ToUSD(u256(amount), price), price)
			require.LessOrEqual(t, back.Uint64(), amount, "price %v", price)
		}
	}
}

// stablePoolParams mirrors legacyPoolParams for the StableSwap regime.
func stablePoolParams(amountIn uint64, x2y bool) QuoteParams {
	return legacyPoolParams(amountIn, x2y)
}

func TestQuoteStableNoFees(t *testing.T) {
	cases := []struct {
		amountIn uint64
		x2y      bool
		want     uint64
	}{
		{10_000_000, false, 5_156_539_130},
		{100_000_000, false, 49_852_725_213},
		{5_156_539_131, true, 9_920_471},
	}
	for _, c := range cases {
		got, err := QuoteStableNoFees(stablePoolParams(c.amountIn, c.x2y))
		require.NoError(t, err)
		require.Equal(t, c.want, got, "amountIn=%d x2y=%v", c.amountIn, c.x2y)
	}
}

func TestQuoteStableNoFeesBTokenRatios(t *testing.T) {
	ratioY, err := decimal.MustParse("1.0").Div(decimal.MustParse("1.1"))
	require.NoError(t, err)

	p := stablePoolParams(11_000_000, false)
	p.ReserveY = 3_000_000_000
	p.RatioY = ratioY
	got, err := QuoteStableNoFees(p)
	require.NoError(t, err)
	require.Equal(t, uint64(3_437_018_128), got)

	p = stablePoolParams(10_000_000, false)
	p.ReserveY = 3_000_000_000
	p.RatioX = decimal.MustParse("0.5")
	got, err = QuoteStableNoFees(p)
	require.NoError(t, err)
	require.Equal(t, uint64(5_181_584_614), got)

	p = stablePoolParams(10_000_000, false)
	p.ReserveY = 3_000_000_000
	p.RatioX = decimal.MustParse("2.0")
	got, err = QuoteStableNoFees(p)
	require.NoError(t, err)
	require.Equal(t, uint64(2_138_121_895), got)
}

func TestStableLegDepletion(t *testing.T) {
	// sell 10 usdc into the 3000 sui / 1000 usdc pool; the counterpart
	// works out to 994_843_460_869 underlying after the trade
	leg := stableLegInput{
		amountIn:         10_000_000,
		decimalsIn:       6,
		decimalsOut:      9,
		priceIn:          SplitOraclePrice{IntegerPart: u256(1)},
		priceOut:         SplitOraclePrice{IntegerPart: u256(3)},
		scaledUsdReserve: u256(10_000_000_000_000),
		reserveOut:       1_000_000_000_000,
		bTokenReserveOut: 1_000_000_000_000,
		ratioOut:         decimal.MustParse("1.0"),
		scaledAmp:        u256(200),
		d:                u256(38_041_326_932_308),
	}
	out, err := stableLeg(leg)
	require.NoError(t, err)
	require.Equal(t, uint64(5_156_539_130), out)

	// a reserve no bigger than the post-trade counterpart cannot cover the
	// one-unit margin and quotes zero
	leg.reserveOut = 994_843_460_869
	out, err = stableLeg(leg)
	require.NoError(t, err)
	require.Zero(t, out)

	// a b-token reserve smaller than the converted output also quotes zero
	leg.reserveOut = 1_000_000_000_000
	leg.bTokenReserveOut = 5_156_539_129
	out, err = stableLeg(leg)
	require.NoError(t, err)
	require.Zero(t, out)
}

func TestQuoteStable(t *testing.T) {
	p := stablePoolParams(10_000_000, false)
	p.SwapFeeBps = 100

	// confidence 0.06 on price 3 is a 200 bps uncertainty ratio, which
	// overrides the configured 100 bps fee
	q, err := QuoteStable(p, decimal.MustParse("0.06"), decimal.MustParse("0.0001"))
	require.NoError(t, err)
	require.Equal(t, uint64(10_000_000), q.AmountIn)
	require.Equal(t, uint64(2_062_616), q.ProtocolFees)
	require.Equal(t, uint64(101_068_167), q.PoolFees)
	require.Equal(t, uint64(5_053_408_347), q.AmountOut)

	// negligible confidence leaves the configured fee in effect
	q, err = QuoteStable(p, decimal.MustParse("0.0001"), decimal.MustParse("0.0001"))
	require.NoError(t, err)
	require.Equal(t, uint64(1_031_308), q.ProtocolFees)
	require.Equal(t, uint64(50_534_084), q.PoolFees)
	require.Equal(t, uint64(5_104_973_738), q.AmountOut)
}
